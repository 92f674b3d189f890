/*
Package req provides helper functions for HTTP request parsing and data binding.

Bodies are size-limited and strictly decoded: unknown fields and trailing data are
rejected with coded errors so handlers only deal with well-formed input.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"backbench/internal/pkg/errs"
)

// MaxJSONBodySize bounds every JSON request body (64 KB).
const MaxJSONBodySize int64 = 64 << 10

// BindJSON decodes the JSON request body into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
