package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/console/internal/infrastructure/config"
)

// runStoreContract exercises the behavior every Store must share
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set all then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAll(ctx, map[string]string{
			KeyUser:  `{"name":"Dana","role":"admin"}`,
			KeyToken: "tok-1",
		}))

		v, ok, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-1", v)

		v, ok, err = s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"name":"Dana","role":"admin"}`, v)
	})

	t.Run("get all reads present keys together", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAll(ctx, map[string]string{KeyUser: "u", KeyToken: "t"}))

		got, err := s.GetAll(ctx, KeyUser, KeyToken, "missing")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{KeyUser: "u", KeyToken: "t"}, got)

		got, err = s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAll(ctx, map[string]string{KeyToken: "old"}))
		require.NoError(t, s.SetAll(ctx, map[string]string{KeyToken: "new"}))

		v, _, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.Equal(t, "new", v)
	})

	t.Run("delete clears both keys and tolerates missing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetAll(ctx, map[string]string{KeyUser: "u", KeyToken: "t"}))
		require.NoError(t, s.Delete(ctx, KeyUser, KeyToken))
		require.NoError(t, s.Delete(ctx, KeyUser, KeyToken))

		for _, k := range []string{KeyUser, KeyToken} {
			_, ok, err := s.Get(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok, k)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})

	t.Run("closed store errors", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Close())
		_, _, err := s.Get(context.Background(), KeyUser)
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, s.SetAll(context.Background(), map[string]string{KeyUser: "x"}), ErrClosed)
	})
}

func TestGormStore_SQLite(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "session.db"), "test:", gormlogger.Discard)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("scopes are isolated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shared.db")
		a, err := OpenSQLite(path, "a:", gormlogger.Discard)
		require.NoError(t, err)
		defer a.Close()
		b, err := OpenSQLite(path, "b:", gormlogger.Discard)
		require.NoError(t, err)
		defer b.Close()

		ctx := context.Background()
		require.NoError(t, a.SetAll(ctx, map[string]string{KeyToken: "a-token"}))

		_, ok, err := b.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reopen.db")
		ctx := context.Background()

		s, err := OpenSQLite(path, "x:", gormlogger.Discard)
		require.NoError(t, err)
		require.NoError(t, s.SetAll(ctx, map[string]string{KeyToken: "persisted"}))
		require.NoError(t, s.Close())

		s, err = OpenSQLite(path, "x:", gormlogger.Discard)
		require.NoError(t, err)
		defer s.Close()
		v, ok, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "persisted", v)
	})
}

func TestOpen(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "memory"
	s, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "factory.db")
	s, err = Open(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &GormStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Driver = "etcd"
	_, err = Open(cfg, zap.NewNop())
	assert.Error(t, err)
}
