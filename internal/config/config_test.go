package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: tok
  chat_id: "42"
watchlist:
  - RELIANCE
signals:
  rsi_period: 21
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, []string{"RELIANCE"}, cfg.Watchlist)
	assert.Equal(t, 21, cfg.Signals.RSIPeriod)

	// Everything unset falls back to defaults.
	assert.Equal(t, 120, cfg.DataSource.LookbackDays)
	assert.Equal(t, 26, cfg.Signals.MACDSlow)
	assert.Equal(t, "0 30 3 * * 1-5", cfg.Schedule.DailyCron)
	assert.Equal(t, "https://www.nseindia.com", cfg.DataSource.NSEBaseURL)
	assert.Len(t, cfg.Indices, 4)
	assert.Contains(t, cfg.TradeLevels, "NATCOPHARM")
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK"}, cfg.Watchlist)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "1"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("WATCHLIST", " tcs, infy ,")
	t.Setenv("LOOKBACK_DAYS", "60")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, []string{"TCS", "INFY"}, cfg.Watchlist)
	assert.Equal(t, 60, cfg.DataSource.LookbackDays)
}

func TestValidate_Errors(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Validate(), "bot_token")

	cfg.Telegram.BotToken = "tok"
	assert.ErrorContains(t, cfg.Validate(), "chat_id")

	cfg.Telegram.ChatID = "42"
	require.NoError(t, cfg.Validate())

	cfg.Signals.MACDFast = 30
	assert.ErrorContains(t, cfg.Validate(), "macd_fast")
}
