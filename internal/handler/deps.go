package handler

import (
	"time"

	"backbench/internal/app/chat"
	"backbench/internal/app/mail"
	"backbench/internal/app/store"
	"backbench/internal/configs"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/pow"
)

// AppDeps carries everything the handlers need.
type AppDeps struct {
	Manager *chat.Manager
	Config  *configs.AppConfig
	Store   store.Store
	Mailer  mail.Dispatcher
	Pow     *pow.Manager

	// Now is the clock used for OTP windows and record timestamps.
	Now func() time.Time
}

func (d *AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// storeError logs an unexpected store failure and maps it to ErrStoreUnavailable.
func storeError(err error, msg string, fields ...any) *errs.CustomError {
	logx.Error(err, msg, fields...)
	return errs.NewError(errs.ErrStoreUnavailable)
}
