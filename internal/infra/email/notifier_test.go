package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
)

func failedJob() *entity.ExtractionJob {
	return &entity.ExtractionJob{
		ID:           uuid.MustParse("6f1c8a57-8a3e-4f55-9b36-2f3c4f0d8a11"),
		VideoKey:     "user-1/source.mp4",
		OutputName:   "clip",
		Window:       entity.FrameWindow{Start: 10, End: 20},
		Attempt:      3,
		MaxAttempts:  3,
		ErrorMessage: "download_video: connection reset",
	}
}

func TestNotifyFailureSendsMessage(t *testing.T) {
	n := NewSMTPNotifier("mail.local", 1025, "noreply@frametool.local", zap.NewNop())

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		assert.Equal(t, "noreply@frametool.local", from)
		return nil
	}

	require.NoError(t, n.NotifyFailure(context.Background(), "user@example.com", failedJob()))

	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, []string{"user@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Frame extraction failed [Job 6f1c8a57-8a3e-4f55-9b36-2f3c4f0d8a11]")
	assert.Contains(t, gotMsg, "after 3 of 3 attempts")
	assert.Contains(t, gotMsg, "Video: user-1/source.mp4")
	assert.Contains(t, gotMsg, "Error: download_video: connection reset")
}

func TestNotifyFailureWrapsSendError(t *testing.T) {
	n := NewSMTPNotifier("mail.local", 1025, "noreply@frametool.local", zap.NewNop())
	boom := errors.New("connection refused")
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := n.NotifyFailure(context.Background(), "user@example.com", failedJob())
	assert.ErrorIs(t, err, boom)
}
