package main

import (
	"context"
	"fmt"

	"backbench/internal/app/mail"
	"backbench/internal/app/store"
	"backbench/internal/app/store/memory"
	"backbench/internal/app/store/mongo"
	"backbench/internal/app/store/postgres"
	"backbench/internal/configs"
	"backbench/internal/pkg/logx"
)

// openStore connects the backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *configs.AppConfig) (store.Store, error) {
	switch cfg.StoreDriver {
	case configs.StoreDriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case configs.StoreDriverMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	case configs.StoreDriverMemory:
		logx.Warn("Using in-memory store; accounts are lost on restart.")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newMailer returns the SMTP dispatcher, or a logging one when SMTP is not configured.
func newMailer(cfg *configs.AppConfig) mail.Dispatcher {
	if !cfg.MailEnabled() {
		logx.Warn("SMTP_HOST not set; OTP emails will only be logged.")
		return mail.NewLogDispatcher()
	}
	return mail.NewSMTPDispatcher(mail.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.MailFrom,
		Plaintext: cfg.SMTPPlaintext,
	})
}
