package handler

import (
	"errors"
	"net/http"

	"backbench/internal/app/store"
	"backbench/internal/pkg/auth/jwt"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/resp"
)

// HandleGetUserProfile returns the account behind the bearer token.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Store.FindByEmail(r.Context(), identity.Email)
		if errors.Is(err, store.ErrUserNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		if err != nil {
			resp.RespondError(w, r, storeError(err, "get_user_profile: lookup failed", "user_id", identity.ID))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}
