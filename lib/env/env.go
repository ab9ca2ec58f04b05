package env

import (
	"os"
	"strconv"
	"time"
)

func GetString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if ok {
		return value
	}
	return defaultValue
}

func GetInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(value)
	if err != nil {
		panic(err) // expected developer provide suitable config
	}
	return valueInt
}

func GetBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if ok {
		return value == "true"
	}
	return defaultValue
}

func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err) // expected developer provide suitable config
	}
	return d
}
