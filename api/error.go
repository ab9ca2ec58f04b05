package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"feedcore/lib/store"
)

func (app *app) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.log.Error("internal error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	writeJSONError(w, http.StatusInternalServerError, "the server has a problem")
}

func (app *app) badRequest(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusBadRequest, message)
}

// storeError maps primary-store failures onto responses. Mutations against
// missing records are 404s; everything else is a failed request, with no
// partial data returned.
func (app *app) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	app.internalServerError(w, r, err)
}
