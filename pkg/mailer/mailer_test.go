package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/pkg/logger"
)

func TestNew_PicksSender(t *testing.T) {
	_, ok := New(config.MailConfig{}).(LogSender)
	assert.True(t, ok)

	s, ok := New(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "a@b.c"}).(*SMTPSender)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com:587", s.addr)
}

func TestSMTPSender_Send(t *testing.T) {
	var gotTo []string
	var gotMsg string
	s := &SMTPSender{addr: "h:25", host: "h", from: "no-reply@x.com",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotTo = to
			gotMsg = string(msg)
			return nil
		}}

	require.NoError(t, s.Send(context.Background(), "Your OTP Code", "Your OTP code is 123456", "a@x.com"))
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Your OTP Code\r\n")
	assert.Contains(t, gotMsg, "Your OTP code is 123456")
}

func TestSMTPSender_PropagatesFailure(t *testing.T) {
	boom := errors.New("535 auth failed")
	s := &SMTPSender{addr: "h:25", host: "h",
		send: func(string, smtp.Auth, string, []string, []byte) error { return boom }}

	err := s.Send(context.Background(), "s", "b", "a@x.com")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, LogSender{}.Send(context.Background(), "s", "b"), ErrNoRecipients)
}

func TestLogSender_KeepsBodyOutOfInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	require.NoError(t, LogSender{}.Send(context.Background(), "Your OTP Code", "Your OTP code is 654321", "a@x.com"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Your OTP Code", entry.ContextMap()["subject"])
	assert.NotContains(t, entry.ContextMap(), "body")

	assert.ErrorIs(t, LogSender{}.Send(context.Background(), "s", "b"), ErrNoRecipients)
}
