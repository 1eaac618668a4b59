package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeSendResetEmail = "mail:password_reset"
	TypeResetSweep     = "reset:sweep"
)

// SendResetEmailPayload carries one reset email. The link holds the raw
// reset token, so it travels sealed with the shared age identity.
type SendResetEmailPayload struct {
	To        string `json:"to"`
	SealedURL string `json:"sealed_url"`
}

func NewSendResetEmailTask(payload SendResetEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendResetEmail, data), nil
}

// ResetSweepPayload is empty - the sweep removes every expired token
type ResetSweepPayload struct{}

func NewResetSweepTask() *asynq.Task {
	return asynq.NewTask(TypeResetSweep, nil)
}
