package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/hr-manager/pkg/crypto"
)

// ResetMailer delivers a reset link synchronously.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// ExpiredTokenSweeper removes reset tokens past their expiry.
type ExpiredTokenSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Handler struct {
	tokens    ExpiredTokenSweeper
	mailer    ResetMailer
	encryptor *crypto.Encryptor
	logger    *slog.Logger
}

func NewHandler(tokens ExpiredTokenSweeper, mailer ResetMailer, encryptor *crypto.Encryptor, logger *slog.Logger) *Handler {
	return &Handler{
		tokens:    tokens,
		mailer:    mailer,
		encryptor: encryptor,
		logger:    logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSendResetEmail, h.HandleSendResetEmail)
	mux.HandleFunc(TypeResetSweep, h.HandleResetSweep)
}

func (h *Handler) HandleSendResetEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendResetEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	resetURL, err := h.encryptor.Open(payload.SealedURL)
	if err != nil {
		// A payload sealed for another identity will never open.
		return fmt.Errorf("opening reset link: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.mailer.SendPasswordReset(ctx, payload.To, resetURL); err != nil {
		h.logger.Warn("reset email delivery failed", "error", err)
		return fmt.Errorf("sending reset email: %w", err)
	}

	h.logger.Info("reset email delivered")
	return nil
}

func (h *Handler) HandleResetSweep(ctx context.Context, _ *asynq.Task) error {
	deleted, err := h.tokens.DeleteExpired(ctx)
	if err != nil {
		h.logger.Error("reset token sweep failed", "error", err)
		return err
	}

	h.logger.Info("reset token sweep completed", "deleted", deleted)
	return nil
}
