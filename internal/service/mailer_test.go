package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go_vocab_builder/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSESClient struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSESClient) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSESClient{}
	mailer := newSESMailer(client, "noreply@example.com")

	err := mailer.Send(testContext(), "alice@example.com", "確認", "本文")
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "確認", aws.ToString(client.input.Content.Simple.Subject.Data))
	assert.Equal(t, "本文", aws.ToString(client.input.Content.Simple.Body.Text.Data))
}

func TestSESMailer_SendError(t *testing.T) {
	sendErr := errors.New("throttled")
	mailer := newSESMailer(&fakeSESClient{err: sendErr}, "noreply@example.com")

	err := mailer.Send(testContext(), "alice@example.com", "s", "b")
	assert.ErrorIs(t, err, sendErr)
}

func TestNewMailer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		mailerType string
	}{
		{name: "log", mailerType: "log"},
		{name: "未知の種類は log にフォールバック", mailerType: "carrier-pigeon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Mailer: config.MailerConfig{Type: tt.mailerType}}
			mailer := NewMailer(cfg, logger)
			assert.IsType(t, &LogMailer{}, mailer)
			assert.NoError(t, mailer.Send(testContext(), "a@example.com", "s", "b"))
		})
	}
}
