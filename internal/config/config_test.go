package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: test
order_db:
  driver: memory
admin:
  token: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "test", cfg.Env)
	require.Equal(t, "memory", cfg.OrderDB.Driver)
	require.Equal(t, 4*time.Minute, cfg.Fulfillment.MinDelay)
	require.Equal(t, 8*time.Minute, cfg.Fulfillment.MaxDelay)
	require.Equal(t, "3.7", cfg.ExchangeRate.FallbackRate)
	require.Equal(t, time.Hour, cfg.ExchangeRate.RefreshInterval)
	require.Equal(t, "usdttrc20", cfg.NowPayments.PayCurrency)
	require.Equal(t, "100", cfg.Checkout.MinAmountILS)
	require.Equal(t, "31", cfg.Checkout.MinAmountUSD)
	require.Len(t, cfg.Fulfillment.DeliveryNodes, 3)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	path := writeConfig(t, `
order_db:
  driver: postgres
admin:
  token: secret
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvertedDelayRange(t *testing.T) {
	path := writeConfig(t, `
order_db:
  driver: memory
admin:
  token: secret
fulfillment:
  min_delay: 8m
  max_delay: 4m
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
