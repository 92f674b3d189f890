package handler

import (
	"context"
	"net/http"
	"time"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/resp"
)

// HandleOnline returns the usernames of the authenticated chat connections.
func HandleOnline(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		online, err := deps.Manager.Online(ctx)
		if err != nil {
			logx.Error(err, "online: snapshot query failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"online": online,
			"count":  len(online),
		})
	}
}

// HandleHealth reports liveness and whether the store answers a ping.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "ok"
		if err := deps.Store.Ping(ctx); err != nil {
			logx.Warn("Health check: store ping failed", "error", err.Error())
			storeStatus = "unavailable"
		}

		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "Backbench Server",
			"store":   storeStatus,
		})
	}
}
