// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package store

import (
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicepro/authcore/pkg/errutil"
)

// fakeMigrate stubs migrateIface for unit testing the wrapper logic.
type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	forcedTo   int
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Force(version int) error {
	f.forcedTo = version
	return f.forceErr
}
func (f *fakeMigrate) Close() (error, error) { return f.srcErr, f.dbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("applies migrations", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Up())
	})

	t.Run("already up to date is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("wraps failures", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: assert.AnError}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("rolls back migrations", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Down())
	})

	t.Run("nothing to roll back is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})

	t.Run("wraps failures", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: assert.AnError}}
		err := m.Down()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports current version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("no applied migrations reads as version zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.False(t, dirty)
	})

	t.Run("wraps failures", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: assert.AnError}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("forces the version", func(t *testing.T) {
		fake := &fakeMigrate{}
		m := &Migrator{m: fake}
		require.NoError(t, m.Force(2))
		assert.Equal(t, 2, fake.forcedTo)
	})

	t.Run("rejects negative versions", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	})

	t.Run("wraps failures", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{forceErr: assert.AnError}}
		err := m.Force(1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("clean close", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Close())
	})

	t.Run("source error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: assert.AnError}}
		require.Error(t, m.Close())
	})

	t.Run("database error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{dbErr: assert.AnError}}
		require.Error(t, m.Close())
	})

	t.Run("both errors", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: assert.AnError, dbErr: assert.AnError}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
	})
}

func TestNewMigrator_EmbeddedMigrations(t *testing.T) {
	// The embedded source must parse even without a reachable database;
	// a bogus scheme fails at database init, after the source loads.
	_, err := NewMigrator("bogus://nowhere")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
