// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil reads the pieces of an HTTP request every handler needs:
a JSON body, a numeric path id, and the authenticated account.

Failures come back as [apperr.AppError] values ready for [respond.Error].
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/validate"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

/*
DecodeJSON decodes the request body into target.

Returns:
  - error: validate.ErrInvalidJSON for a missing, oversized or malformed body
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil || request.Body == http.NoBody {
		return validate.ErrInvalidJSON
	}
	body := http.MaxBytesReader(nil, request.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID parses a named numeric URL parameter.

Returns:
  - int64: The parsed identifier
  - error: A VALIDATION_ERROR if the parameter is missing or not a positive integer
*/
func ID(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

// RequiredAccountID returns the account id set by the identity guard, or a
// 401 when the route was reached without one.
func RequiredAccountID(request *http.Request) (int64, error) {
	id, ok := ctxutil.AccountID(request.Context())
	if !ok {
		return 0, apperr.Unauthorized("Authentication required")
	}
	return id, nil
}
