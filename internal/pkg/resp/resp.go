/*
Package resp writes the envelope every account, feedback and chat route answers with.

A body is always {"code","message","data"}: code 0 and "success" when the handler
finished, otherwise the errs code and the message shown to the user. Encoding
failures are logged with the request ID so a broken payload can be traced back to
its route.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
)

// Envelope is the body of every API response.
type Envelope struct {
	// Code is 0 on success, otherwise an errs code.
	Code int `json:"code"`

	Message string `json:"message"`

	// Data is omitted on errors.
	Data any `json:"data,omitempty"`
}

// RespondJSON encodes payload and writes it with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "response encoding failed",
			"http_status", httpStatus,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		body, httpStatus = fallbackBody(), http.StatusInternalServerError
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	if _, err := w.Write(body); err != nil {
		logx.Warn("response write failed", "path", r.URL.Path, "error", err.Error())
	}
}

// fallbackBody is the ErrUnknown envelope, used when the real payload cannot be encoded.
func fallbackBody() []byte {
	unknown := errs.NewError(errs.ErrUnknown)
	body, _ := json.Marshal(Envelope{Code: unknown.Code, Message: unknown.Message})
	return body
}

// RespondSuccess answers 200 with data under code 0.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, Envelope{Message: "success", Data: data})
}

// RespondError answers with the status, code and message of customErr.
// A nil error is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}
	RespondJSON(w, r, customErr.Status, Envelope{Code: customErr.Code, Message: customErr.Message})
}
