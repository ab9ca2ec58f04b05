package store

import "errors"

// ErrNotFound reports that a mutation targeted a record that does not exist.
// Read paths never return it: absent IDs are simply missing from results.
var ErrNotFound = errors.New("store: record not found")
