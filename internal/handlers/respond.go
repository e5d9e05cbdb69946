// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the public JSON site and
// the admin API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// respondValidation replies 422 with one message per invalid field, or 400
// when err is not a validation result.
func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	fields := make(map[string]string, len(fieldErrs))
	for name, fe := range fieldErrs {
		fields[name] = fe.Error()
	}
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, errorResponse{Error: "validation failed", Fields: fields})
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
