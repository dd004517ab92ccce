package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
)

func newTestService(t *testing.T, cfg config.SMTPConfig, send func(string, smtp.Auth, string, []string, []byte) error) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = 0
	return impl
}

func TestSendNotification(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.test", Port: 2525, From: "hr@example.com", FromName: "HR"},
		func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			return nil
		})

	err := svc.SendNotification(context.Background(), "budi@example.com", "Budi", "Leave approved", "Your leave was approved.")
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:2525", gotAddr)
	assert.Equal(t, []string{"budi@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: HR <hr@example.com>\r\n"))
	assert.Contains(t, gotMsg, "Subject: Leave approved\r\n")
	assert.Contains(t, gotMsg, "Hi Budi,")
	assert.Contains(t, gotMsg, "Your leave was approved.")
}

func TestSendNotification_Retries(t *testing.T) {
	calls := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.test", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			calls++
			return errors.New("connection refused")
		})

	err := svc.SendNotification(context.Background(), "a@example.com", "A", "s", "m")
	require.Error(t, err)
	assert.Equal(t, maxRetries, calls)
}

func TestSendNotification_NotConfigured(t *testing.T) {
	calls := 0
	svc := newTestService(t, config.SMTPConfig{},
		func(string, smtp.Auth, string, []string, []byte) error {
			calls++
			return nil
		})

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.SendNotification(context.Background(), "a@example.com", "A", "s", "m"))
	assert.Zero(t, calls)
}
