package handler

import "net/http"

// errorResponse writes {"status":"error","error":message}.
func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"status": "error", "error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// errorFrom maps err to its status code. Internal errors keep a generic message
// so driver details do not leak to clients.
func errorFrom(w http.ResponseWriter, err error) {
	code := GetCode(err)
	if code == http.StatusInternalServerError {
		internalErrorResponse(w)
		return
	}
	errorResponse(w, code, err.Error())
}

// badRequestResponse returns 400 BadRequest status.
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

func internalErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}
