package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"evrental-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRepositories_Memory(t *testing.T) {
	seedFile := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
vehicles:
  - code: EV-01
    model: Ather 450X
    rent_per_day: "500"
    quantity: 1
`), 0o600))

	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "memory", SeedFile: seedFile}}
	repos, closeFn, err := OpenRepositories(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	assert.NoError(t, repos.Ping(context.Background()))
	assert.NotNil(t, repos.Tx)
	assert.NotNil(t, repos.Vehicles)
}

func TestOpenRepositories_MissingSeed(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "memory", SeedFile: filepath.Join(t.TempDir(), "nope.yaml")}}
	_, _, err := OpenRepositories(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenRepositories_BadIsolation(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "postgres", Isolation: "chaos"}}
	_, _, err := OpenRepositories(context.Background(), cfg)
	assert.Error(t, err)
}
