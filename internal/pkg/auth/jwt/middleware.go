package jwt

import (
	"context"
	"net/http"
	"strings"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/resp"
)

type contextKey struct{}

// payloadKey stores the parsed *Payload in the request context.
var payloadKey = contextKey{}

// IdentityExtractorMiddleware parses a "Bearer <token>" Authorization header and,
// when the token is valid, stores its Payload in the request context.
// Missing or invalid tokens never fail the request; the caller is treated as anonymous.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseSessionToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// WithPayload returns a copy of ctx carrying payload.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, payloadKey, payload)
}

// GetPayloadFromContext returns the Payload stored by IdentityExtractorMiddleware,
// or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, _ := r.Context().Value(payloadKey).(*Payload)
	return payload
}

// RequireIdentity rejects requests that carry no valid identity with 401.
// It must be mounted after IdentityExtractorMiddleware.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}
