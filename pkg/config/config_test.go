package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pairs.MaxDistance)
	assert.Equal(t, "document-occurrences", cfg.Kafka.Topics.DocumentOccurrences)
	assert.Equal(t, "word-pairs", cfg.Kafka.Topics.WordPairs)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pairs:
  maxDistance: 8
  workers: 2
  runTimeout: 5s
kafka:
  brokers: ["kafka-a:9092"]
logging:
  level: debug
`), 0o644))

	t.Setenv("WP_PAIRS_WORKERS", "16")
	t.Setenv("WP_REDIS_ADDR", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pairs.MaxDistance)
	assert.Equal(t, 16, cfg.Pairs.Workers)
	assert.Equal(t, 5*time.Second, cfg.Pairs.RunTimeout)
	assert.Equal(t, []string{"kafka-a:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Empty(t, cfg.Redis.Addr)
	// untouched sections keep their defaults
	assert.Equal(t, "wordpairs", cfg.Postgres.Database)
}

func TestLoadRejectsNegativeDistance(t *testing.T) {
	t.Setenv("WP_PAIRS_MAX_DISTANCE", "-1")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxDistance")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "wp", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=wp sslmode=disable", p.DSN())
}
