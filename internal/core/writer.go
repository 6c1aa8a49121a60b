package core

import (
	"context"
	"fmt"

	"matruraksha-bot/pkg"

	"go.uber.org/zap"
)

// FallbackWriter commits a finalized registration. It attempts the primary
// remote registration API first and falls back to a direct store write only
// when the primary did not succeed, so exactly one successful write ever
// happens. Whichever path succeeds supplies the canonical saved record.
//
// Document upload metadata deliberately does not use this: uploads go
// straight to the store.
type FallbackWriter struct {
	backend Backend
	repo    Repository
	logger  *zap.Logger
}

func NewFallbackWriter(backend Backend, repo Repository, logger *zap.Logger) *FallbackWriter {
	return &FallbackWriter{backend: backend, repo: repo, logger: logger}
}

// Save persists the payload and returns the canonical record. When both
// paths fail the error wraps ErrPersistenceFailure and the caller discards
// the draft; Save is not safe to re-invoke with the same draft after a
// reported success.
func (w *FallbackWriter) Save(ctx context.Context, payload pkg.RegistrationPayload) (*pkg.Profile, error) {
	saved, primaryErr := w.backend.RegisterMother(ctx, payload)
	if primaryErr == nil {
		return saved, nil
	}
	w.logger.Warn("primary registration write failed, using store fallback",
		zap.String("session_key", payload.SessionKey),
		zap.Error(primaryErr),
	)

	saved, fallbackErr := w.repo.InsertProfile(ctx, payload)
	if fallbackErr != nil {
		w.logger.Error("fallback registration write failed",
			zap.String("session_key", payload.SessionKey),
			zap.Error(fallbackErr),
		)
		return nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrPersistenceFailure, primaryErr, fallbackErr)
	}
	return saved, nil
}
