package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAppliesShopDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
database:
  host: localhost
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.Shop.StartBalance)
	assert.Equal(t, "₽", cfg.Shop.Currency)
	assert.Equal(t, 30, cfg.Shop.DialogTTLMinutes)
	assert.Empty(t, cfg.Shop.Products)
	assert.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
}

func TestLoadConfigReadsShopSection(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  operator_chat_id: 99
shop:
  start_balance: 2500
  currency: "$"
  dialog_ttl_minutes: 10
  products:
    - id: 1
      name: "Widget"
      price: 50
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Core.Telegram.OperatorChatID)
	assert.Equal(t, int64(2500), cfg.Shop.StartBalance)
	assert.Equal(t, "$", cfg.Shop.Currency)
	require.Len(t, cfg.Shop.Products, 1)
	assert.Equal(t, int64(50), cfg.Shop.Products[0].Price)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	if os.Getenv("BOT_TOKEN") != "" {
		t.Skip("BOT_TOKEN set in environment")
	}
	path := writeConfig(t, `
telegram:
  run_mode: longpoll
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
