package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "text", cfg.App.LogFormat)
	assert.Equal(t, "newTrade", cfg.Booking.MessageType)
	assert.Equal(t, "DefaultSender", cfg.Booking.Sender)
	assert.Equal(t, "pricing", cfg.Booking.ClassificationMode)
	assert.Equal(t, 4, cfg.Booking.Workers)
	assert.True(t, cfg.Output.Enabled)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "{trade_id}-{unit}.json", cfg.Output.FilePattern)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "tradebook:messages", cfg.Queue.Topic)
	assert.Equal(t, 3, cfg.Queue.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.Queue.BreakerCooldown)
	assert.Equal(t, ":9992", cfg.HTTP.Addr)
}

func TestLoadQueueBreaker(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
queue:
  breaker_threshold: 0
  breaker_cooldown: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Queue.BreakerThreshold)
	assert.Equal(t, 5*time.Second, cfg.Queue.BreakerCooldown)
}

func TestLoadIncludesAndExplicitKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
booking:
  sender: DESK
  workers: 2
output:
  enabled: true
`)
	main := writeFile(t, dir, "main.yaml", `
include:
  - base.yaml
booking:
  classification_mode: PAIR
  placeholder_periods:
    - {effective: "2024-01-01", termination: "2024-02-01"}
    - {effective: "2024-02-01", termination: "2024-03-01"}
output:
  enabled: false
store:
  enabled: true
  path: /tmp/x.db
`)
	cfg, err := Load(main)
	require.NoError(t, err)

	assert.Equal(t, "DESK", cfg.Booking.Sender)
	assert.Equal(t, 2, cfg.Booking.Workers)
	assert.Equal(t, "pair", cfg.Booking.ClassificationMode)
	assert.False(t, cfg.Output.Enabled, "explicit false must survive defaults")
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	require.Len(t, cfg.Booking.PlaceholderPeriods, 2)
	assert.Equal(t, "2024-02-01", cfg.Booking.PlaceholderPeriods[1].Effective)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	assert.ErrorContains(t, err, "include cycle")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRADEBOOK_OUTPUT_DIR", "/srv/out")
	t.Setenv("TRADEBOOK_QUEUE_ENABLED", "true")
	t.Setenv("TRADEBOOK_BOOKING_WORKERS", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/out", cfg.Output.Dir)
	assert.True(t, cfg.Queue.Enabled)
	assert.Equal(t, 8, cfg.Booking.Workers)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.yaml", "output:\n  dir: from-file\nmapping:\n  path: tables.yaml\n")

	fs := pflag.NewFlagSet("book", pflag.ContinueOnError)
	fs.String("out", "", "")
	fs.String("mapping", "", "")
	require.NoError(t, fs.Parse([]string{"--out", "from-flag"}))

	cfg, err := Load(path, WithFlags(fs, map[string]string{"out": "output.dir", "mapping": "mapping.path"}))
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Output.Dir)
	assert.Equal(t, "tables.yaml", cfg.Mapping.Path, "unset flag must not mask the file")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"mode":         "booking:\n  classification_mode: guess\n",
		"log format":   "app:\n  log_format: xml\n",
		"pattern":      "output:\n  file_pattern: same.json\n",
		"periods":      "booking:\n  placeholder_periods:\n    - {effective: \"2024-01-01\", termination: \"2024-02-01\"}\n",
		"bad period":   "booking:\n  placeholder_periods:\n    - {effective: \"2024-02-01\", termination: \"2024-01-01\"}\n    - {effective: \"2024-02-01\", termination: \"2024-03-01\"}\n",
		"store path":   "store:\n  enabled: true\n  path: \"\"\n",
		"inbox dir":    "inbox:\n  enabled: true\n  dir: \"\"\n",
		"queue db":     "queue:\n  db: -1\n",
		"log level":    "app:\n  log_level: loud\n",
		"workers zero": "booking:\n  workers: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Booking.PlaceholderPeriods, 2)
	assert.Equal(t, "2024-07-01", cfg.Booking.PlaceholderPeriods[1].Effective)
	assert.False(t, cfg.Queue.Enabled)
}
