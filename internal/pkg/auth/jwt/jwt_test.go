package jwt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

const testSecret = "test-secret"

func TestIssueAndParseSessionToken(t *testing.T) {
	identity := Payload{ID: "u-1", Email: "alice@x.com", Username: "alice"}
	token, err := IssueSessionToken(identity, testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if identity.Issuer != "" {
		t.Error("IssueSessionToken modified the caller's payload")
	}

	payload, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if payload.Email != "alice@x.com" || payload.Username != "alice" || payload.Subject != "u-1" || payload.Issuer != TokenIssuer {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestParseSessionTokenRejects(t *testing.T) {
	valid, _ := IssueSessionToken(Payload{ID: "u-1"}, testSecret, time.Minute)
	expired, _ := IssueSessionToken(Payload{ID: "u-1"}, testSecret, -time.Minute)

	foreign := &Payload{ID: "u-1", StandardClaims: jwt.StandardClaims{Issuer: "someone-else", ExpiresAt: time.Now().Add(time.Minute).Unix()}}
	otherIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, foreign).SignedString([]byte(testSecret))
	otherAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Payload{ID: "u-1", StandardClaims: jwt.StandardClaims{Issuer: TokenIssuer}}).SignedString([]byte(testSecret))

	tests := map[string]struct {
		token  string
		secret string
		want   error
	}{
		"wrong secret": {valid, "other", ErrTokenInvalid},
		"expired":      {expired, testSecret, ErrTokenInvalid},
		"garbage":      {"not.a.token", testSecret, ErrTokenInvalid},
		"other alg":    {otherAlg, testSecret, ErrTokenInvalid},
		"other issuer": {otherIssuer, testSecret, ErrTokenIssuer},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.token, tt.secret); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	token, _ := IssueSessionToken(Payload{ID: "u-1", Username: "alice"}, testSecret, time.Minute)

	h := IdentityExtractorMiddleware(testSecret)(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetPayloadFromContext(r).Username))
	})))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered token", "Bearer " + token + "x", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "alice" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}
