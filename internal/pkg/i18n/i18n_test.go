package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestT(t *testing.T) {
	require.NoError(t, Init("en"))

	ctx := context.Background()
	assert.Equal(t, "Checked in at 09:05.", T(ctx, "bot.checkin.ok", map[string]any{"time": "09:05"}))
	assert.Equal(t, "Check-in pukul 09:05.", T(WithLocale(ctx, "id"), "bot.checkin.ok", map[string]any{"time": "09:05"}))
	assert.Equal(t, "no.such.message", T(ctx, "no.such.message"))
}

func TestT_FallsBackToEnglish(t *testing.T) {
	require.NoError(t, Init("en"))

	ctx := WithLocale(context.Background(), "fr")
	assert.Equal(t, "Not found.", T(ctx, "bot.error.NOT_FOUND"))
}

func TestLocaleFromContext(t *testing.T) {
	require.NoError(t, Init("id"))
	t.Cleanup(func() { _ = Init("en") })

	assert.Equal(t, "id", LocaleFromContext(context.Background()))
	assert.Equal(t, "en", LocaleFromContext(WithLocale(context.Background(), "en")))
}

func TestT_OptionalRejectionReason(t *testing.T) {
	require.NoError(t, Init("en"))
	ctx := context.Background()

	data := map[string]any{"start_date": "2026-03-09", "end_date": "2026-03-10"}
	assert.Equal(t, "Your leave from 2026-03-09 to 2026-03-10 was rejected", T(ctx, "notification.leave_rejected", data))

	data["reason"] = "audit week"
	assert.Equal(t, "Your leave from 2026-03-09 to 2026-03-10 was rejected: audit week", T(ctx, "notification.leave_rejected", data))
}
