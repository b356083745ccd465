package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// allowedFields is the complete set of fields a post may carry.
var allowedFields = map[string]struct{}{
	"id":     {},
	"title":  {},
	"body":   {},
	"userId": {},
}

// validateSchema enforces field rules on create and update bodies:
// title must be a non-blank string, userId must be an integer, and nothing
// outside the allowed set may appear. Runs after normalizeID, so body["id"]
// is already a coerced integer and never trips the checks itself.
func (p *pipeline) validateSchema(_ *gin.Context, st *requestState) *apiError {
	switch st.method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil
	}

	title, ok := st.body["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return errInvalidTitle
	}
	if !isIntegralNumber(st.body["userId"]) {
		return errInvalidUserID
	}

	var extra []string
	for field := range st.body {
		if _, ok := allowedFields[field]; !ok {
			extra = append(extra, field)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return unexpectedFieldsError(strings.Join(extra, ", "))
	}
	return nil
}
