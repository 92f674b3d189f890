/*
Package handler provides the HTTP handlers and routing setup for the Backbench server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"backbench/internal/pkg/auth/jwt"
	"backbench/internal/pkg/limiter"
	"backbench/internal/pkg/logx"
)

const (
	// routes that send email
	MailRate  = 0.05
	MailBurst = 3

	// every other API route
	APIRate  = 5
	APIBurst = 20

	// WebSocket handshakes
	JoinRate  = 0.2
	JoinBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// The IP limiters it creates run their sweep until ctx ends.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	mailLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(MailRate), MailBurst)
	apiLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(APIRate), APIBurst)
	joinLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(JoinRate), JoinBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Group(func(mailing chi.Router) {
				mailing.Use(mailLimiter.Middleware)
				mailing.Use(deps.Pow.Middleware)

				mailing.Post("/register", HandleRegister(deps))
				mailing.Post("/resend-otp", HandleResendOTP(deps))
			})

			auth.Group(func(plain chi.Router) {
				plain.Use(apiLimiter.Middleware)

				plain.Post("/verify-otp", HandleVerifyOTP(deps))
				plain.Post("/check-email", HandleCheckEmail(deps))
				plain.Post("/login", HandleLogin(deps))
				plain.Post("/change-password", HandleChangePassword(deps))
			})
		})

		api.Group(func(rest chi.Router) {
			rest.Use(apiLimiter.Middleware)

			rest.With(jwt.RequireIdentity).Get("/user/profile", HandleGetUserProfile(deps))

			rest.Post("/feedback", HandleFeedback(deps))
			rest.Post("/rating", HandleRating(deps))

			rest.Get("/chat/online", HandleOnline(deps))

			rest.Get("/pow/challenge", HandlePowChallenge(deps))
			rest.Post("/pow/verify", HandlePowVerify(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(deps.Manager, wsUpgrader, joinLimiter))

	return r
}
