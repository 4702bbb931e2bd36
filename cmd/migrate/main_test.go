package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-scout/pkg/database"
)

func TestRun_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"too many", []string{"up", "down"}},
		{"unknown command", []string{"sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, run(tt.args), errUsage)
		})
	}
}

func TestRun_UpThenDown(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "audit.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)

	require.NoError(t, run([]string{"up"}))

	db, err := database.NewConnection("sqlite", path, false)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("narrative_logs"))
	require.NoError(t, db.Close())

	require.NoError(t, run([]string{"down"}))

	db, err = database.NewConnection("sqlite", path, false)
	require.NoError(t, err)
	defer db.Close()
	assert.False(t, db.Migrator().HasTable("narrative_logs"))
}
