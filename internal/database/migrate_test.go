package database

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeMigrator struct {
	calls      []string
	steps      int
	err        error
	versionErr error
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return f.err }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return f.err }

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return 1, false, f.versionErr
}

func TestRunMigration(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		command string
		steps   int
		calls   []string
		n       int
	}{
		{"up all", "up", 0, []string{"up"}, 0},
		{"up steps", "up", 2, []string{"steps"}, 2},
		{"down all", "down", 0, []string{"down"}, 0},
		{"down steps", "down", 1, []string{"steps"}, -1},
		{"version", "version", 0, []string{"version"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{}
			assert.NoError(t, RunMigration(m, tt.command, tt.steps, logger))
			assert.Equal(t, tt.calls, m.calls)
			assert.Equal(t, tt.n, m.steps)
		})
	}
}

func TestRunMigration_Errors(t *testing.T) {
	logger := zap.NewNop()

	assert.NoError(t, RunMigration(&fakeMigrator{err: migrate.ErrNoChange}, "up", 0, logger))
	assert.NoError(t, RunMigration(&fakeMigrator{versionErr: migrate.ErrNilVersion}, "version", 0, logger))

	err := RunMigration(&fakeMigrator{err: errors.New("dirty database")}, "up", 0, logger)
	assert.ErrorContains(t, err, "migration failed")

	err = RunMigration(&fakeMigrator{}, "sideways", 0, logger)
	assert.ErrorContains(t, err, "invalid migration command")
}
