package main

import "net/http"

// apiError is the single error currency of the pipeline: every stage either
// passes or terminates the request with exactly one of these. The wire shape
// is always {"error": message}.
type apiError struct {
	Status  int
	Message string
}

// errorResponse documents the error envelope for swagger.
type errorResponse struct {
	Error string `json:"error"`
}

var (
	errInvalidBody    = &apiError{http.StatusBadRequest, "invalid JSON body"}
	errInvalidID      = &apiError{http.StatusBadRequest, "id must be an integer or omitted"}
	errInvalidPathID  = &apiError{http.StatusBadRequest, "path id must be an integer"}
	errInvalidBodyID  = &apiError{http.StatusBadRequest, "body id must be an integer"}
	errIDMismatch     = &apiError{http.StatusBadRequest, "body id must equal path id"}
	errMissingToken   = &apiError{http.StatusUnauthorized, "missing bearer token"}
	errInvalidToken   = &apiError{http.StatusUnauthorized, "invalid or expired token"}
	errInvalidTitle   = &apiError{http.StatusUnprocessableEntity, "title must be non-empty string"}
	errInvalidUserID  = &apiError{http.StatusUnprocessableEntity, "userId must be integer"}
	errDuplicateTitle = &apiError{http.StatusConflict, "title already exists"}
	errConflictCheck  = &apiError{http.StatusInternalServerError, "conflict check failed"}
	errAllocateID     = &apiError{http.StatusInternalServerError, "failed to allocate id"}
)

func unexpectedFieldsError(fields string) *apiError {
	return &apiError{http.StatusBadRequest, "unexpected fields: " + fields}
}
