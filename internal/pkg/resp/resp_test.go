package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backbench/internal/pkg/errs"
)

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]bool{"exists": true})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Code int             `json:"code"`
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != 0 || !body.Data["exists"] {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        *errs.CustomError
		wantCode   int
		wantStatus int
	}{
		{"business error", errs.NewError(errs.ErrEmailExists), errs.ErrEmailExists, http.StatusOK},
		{"rate limited", errs.NewError(errs.ErrRateLimitExceeded), errs.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"nil falls back to unknown", nil, errs.ErrUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body Envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", body.Code, tt.wantCode)
			}
			if body.Data != nil {
				t.Errorf("error responses carry no data, got %v", body.Data)
			}
		})
	}
}

func TestRespondJSONEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/api/chat/online", nil), func() {})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("fallback body is not an envelope: %v", err)
	}
	if body.Code != errs.ErrUnknown {
		t.Errorf("code = %d, want %d", body.Code, errs.ErrUnknown)
	}
}
