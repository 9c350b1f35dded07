package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/pkg/database"
)

type fakeMigrator struct {
	applied []int64
	downs   int
	err     error
}

func (f *fakeMigrator) Up(ctx context.Context) ([]int64, error) {
	return f.applied, f.err
}

func (f *fakeMigrator) Down(ctx context.Context) error {
	f.downs++
	return f.err
}

func (f *fakeMigrator) Status(ctx context.Context) ([]database.MigrationStatus, error) {
	return []database.MigrationStatus{
		{Version: 1, Path: "00001_timetable_schema.sql", Applied: true},
		{Version: 2, Path: "00002_rooms.sql"},
	}, f.err
}

func useMigrator(t *testing.T, m migrator) *bool {
	t.Helper()
	closed := false
	previous := openMigrator
	openMigrator = func() (migrator, func() error, error) {
		return m, func() error { closed = true; return nil }, nil
	}
	t.Cleanup(func() { openMigrator = previous })
	return &closed
}

func TestMigrateUp(t *testing.T) {
	closed := useMigrator(t, &fakeMigrator{applied: []int64{1}})

	out, err := runCLI(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 1 migration(s)")
	assert.True(t, *closed)
}

func TestMigrateDownAndStatus(t *testing.T) {
	fake := &fakeMigrator{}
	useMigrator(t, fake)

	_, err := runCLI(t, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.downs)

	out, err := runCLI(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION")
	assert.Regexp(t, `1\s+applied\s+00001_timetable_schema.sql`, out)
	assert.Regexp(t, `2\s+pending\s+00002_rooms.sql`, out)
}

func TestMigrateSurfacesErrors(t *testing.T) {
	useMigrator(t, &fakeMigrator{err: errors.New("locked")})
	_, err := runCLI(t, "migrate", "up")
	assert.EqualError(t, err, "locked")

	previous := openMigrator
	openMigrator = func() (migrator, func() error, error) {
		return nil, nil, errors.New("connect postgres: refused")
	}
	t.Cleanup(func() { openMigrator = previous })
	_, err = runCLI(t, "migrate", "status")
	assert.EqualError(t, err, "connect postgres: refused")
}
