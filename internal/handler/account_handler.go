/*
Package handler provides HTTP handler functions for account registration, OTP
verification, login and password changes.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"backbench/internal/app/mail"
	"backbench/internal/app/store"
	"backbench/internal/app/user"
	"backbench/internal/pkg/auth/jwt"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/randx"
	"backbench/internal/pkg/req"
	"backbench/internal/pkg/resp"
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_. -]{2,30}$`)
)

func validPassword(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= 6 && n <= 50
}

// emailFromQuery reads and normalizes the ?email= parameter.
func emailFromQuery(r *http.Request) (string, *errs.CustomError) {
	email, err := user.NormalizeEmail(r.URL.Query().Get("email"))
	if err != nil {
		return "", errs.NewError(errs.ErrInvalidEmail)
	}
	return email, nil
}

// sendOTP mails otp to email. Failures are logged and reported as false.
func sendOTP(ctx context.Context, deps *AppDeps, email, otp string) bool {
	body, err := mail.RenderOTP(email, otp, deps.Config.OTPTTL)
	if err != nil {
		logx.Error(err, "Failed to render OTP email")
		return false
	}
	if err := deps.Mailer.Send(ctx, email, mail.OTPSubject, body); err != nil {
		logx.Error(err, "Failed to send OTP email", "email", email)
		return false
	}
	return true
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an unverified account and emails its OTP.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := strings.TrimSpace(input.Username)
		if !usernameRegex.MatchString(username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if !validPassword(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		otp, err := randx.OTP()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		account, err := user.New(username, email, input.Password, otp, deps.now())
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := createAccount(r.Context(), deps, account); err != nil {
			if errors.Is(err, store.ErrUserAlreadyExists) {
				logx.Warn("registration conflict: email already exists", "email", email)
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailExists))
				return
			}
			resp.RespondError(w, r, storeError(err, "register: failed to create user", "email", email))
			return
		}

		otpSent := sendOTP(r.Context(), deps, email, otp)

		logx.Info("User registered", "user_id", account.ID.String(), "otp_sent", otpSent)

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Registration successful. OTP sent to your email.",
			"otpSent": otpSent,
		})
	}
}

// createAccount inserts account. A pending account under the same email whose OTP
// window has closed is purged first instead of waiting for the sweeper.
func createAccount(ctx context.Context, deps *AppDeps, account *user.User) error {
	err := deps.Store.Create(ctx, account)
	if !errors.Is(err, store.ErrUserAlreadyExists) {
		return err
	}

	existing, findErr := deps.Store.FindByEmail(ctx, account.Email)
	if findErr != nil {
		if errors.Is(findErr, store.ErrUserNotFound) {
			return deps.Store.Create(ctx, account)
		}
		return findErr
	}
	if existing.OTPWindowOpen(deps.now(), deps.Config.OTPTTL) {
		return err
	}

	removed, delErr := deps.Store.DeleteMany(ctx, store.DeleteFilter{
		Email:          account.Email,
		UnverifiedOnly: true,
		CreatedBefore:  deps.now().Add(-deps.Config.OTPTTL),
	})
	if delErr != nil {
		return delErr
	}
	logx.Info("expired pending account replaced", "email", account.Email, "removed", removed)
	return deps.Store.Create(ctx, account)
}

type VerifyOTPInput struct {
	OTP string `json:"otp"`
}

// HandleVerifyOTP confirms the OTP sent at registration. A correct OTP submitted
// after the window closes removes the pending account.
func HandleVerifyOTP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, customErr := emailFromQuery(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input VerifyOTPInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Store.FindByEmail(r.Context(), email)
		if errors.Is(err, store.ErrUserNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPInvalid))
			return
		}
		if err != nil {
			resp.RespondError(w, r, storeError(err, "verify_otp: lookup failed", "email", email))
			return
		}

		if account.OTP == "" || !randx.IsValidOTP(input.OTP) || account.OTP != input.OTP {
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPInvalid))
			return
		}

		if !account.OTPWindowOpen(deps.now(), deps.Config.OTPTTL) {
			if _, err := deps.Store.DeleteMany(r.Context(), store.DeleteFilter{Email: email}); err != nil {
				resp.RespondError(w, r, storeError(err, "verify_otp: failed to delete expired user", "email", email))
				return
			}
			logx.Info("OTP expired, pending user removed", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrOTPExpired))
			return
		}

		account.MarkVerified()
		if err := deps.Store.Save(r.Context(), account); err != nil {
			resp.RespondError(w, r, storeError(err, "verify_otp: failed to save user", "email", email))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"emailVerified": true})
	}
}

// HandleResendOTP issues and mails a fresh OTP for an existing account.
func HandleResendOTP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, customErr := emailFromQuery(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Store.FindByEmail(r.Context(), email)
		if errors.Is(err, store.ErrUserNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}
		if err != nil {
			resp.RespondError(w, r, storeError(err, "resend_otp: lookup failed", "email", email))
			return
		}

		otp, err := randx.OTP()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		account.OTP = otp
		if err := deps.Store.Save(r.Context(), account); err != nil {
			resp.RespondError(w, r, storeError(err, "resend_otp: failed to save user", "email", email))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"otpSent": sendOTP(r.Context(), deps, email, otp),
		})
	}
}

type CheckEmailInput struct {
	Email string `json:"email"`
}

// HandleCheckEmail reports whether an account exists for the email.
func HandleCheckEmail(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CheckEmailInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		_, err = deps.Store.FindByEmail(r.Context(), email)
		switch {
		case err == nil:
			resp.RespondSuccess(w, r, map[string]any{"exists": true})
		case errors.Is(err, store.ErrUserNotFound):
			resp.RespondSuccess(w, r, map[string]any{"exists": false})
		default:
			resp.RespondError(w, r, storeError(err, "check_email: lookup failed"))
		}
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		account, err := deps.Store.FindByEmail(r.Context(), email)
		if errors.Is(err, store.ErrUserNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}
		if err != nil {
			resp.RespondError(w, r, storeError(err, "login: lookup failed", "email", email))
			return
		}

		if !account.Verified {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmailNotVerified))
			return
		}

		if !account.CheckPassword(input.Password) {
			logx.Warn("login: password mismatch", "user_id", account.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		payload := jwt.Payload{
			ID:       account.ID.String(),
			Email:    account.Email,
			Username: account.Username,
		}

		token, err := jwt.IssueSessionToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  account,
		})
	}
}

type ChangePasswordInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// HandleChangePassword sets a new password for a verified account identified by
// its email and username.
func HandleChangePassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ChangePasswordInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, err := user.NormalizeEmail(input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if !validPassword(input.NewPassword) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		account, err := deps.Store.FindByEmail(r.Context(), email)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			resp.RespondError(w, r, storeError(err, "change_password: lookup failed", "email", email))
			return
		}
		if err != nil || account.Username != strings.TrimSpace(input.Username) || !account.Verified {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if err := account.SetPassword(input.NewPassword); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := deps.Store.Save(r.Context(), account); err != nil {
			resp.RespondError(w, r, storeError(err, "change_password: failed to save user", "email", email))
			return
		}

		logx.Info("Password changed", "user_id", account.ID.String())
		resp.RespondSuccess(w, r, nil)
	}
}
