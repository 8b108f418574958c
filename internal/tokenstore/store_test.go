package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiwave/aiwave/internal/config"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(dir, "aiwave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "state", "token")),
		"sqlite": sqlite,
		"memory": NewMemoryStore(""),
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get()
			require.NoError(t, err)
			assert.Empty(t, got, "fresh store must be empty")

			require.NoError(t, s.Set("abc123"))
			got, err = s.Get()
			require.NoError(t, err)
			assert.Equal(t, "abc123", got)

			require.NoError(t, s.Set("rotated"))
			got, err = s.Get()
			require.NoError(t, err)
			assert.Equal(t, "rotated", got)

			// padding is part of the token
			for _, tok := range []string{" abc123 ", "abc\n", "\tabc"} {
				require.NoError(t, s.Set(tok))
				got, err = s.Get()
				require.NoError(t, err)
				assert.Equal(t, tok, got)
			}

			require.NoError(t, s.Clear())
			got, err = s.Get()
			require.NoError(t, err)
			assert.Empty(t, got)

			// clearing twice is fine
			require.NoError(t, s.Clear())
		})
	}
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("keep"))
			for _, tok := range []string{"", "   ", "\n", " \t\r\n"} {
				assert.ErrorIs(t, s.Set(tok), ErrEmptyToken, "Set(%q)", tok)
			}

			got, err := s.Get()
			require.NoError(t, err)
			assert.Equal(t, "keep", got)
		})
	}
}

func TestStore_OpaqueTokens(t *testing.T) {
	tokens := []string{
		"eyJhbGciOiJIUzI1NiJ9.eyJlbWFpbCI6ImFAYi5jb20ifQ.sig",
		"şifre-ü-ğ",
		"with spaces inside",
	}
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, tok := range tokens {
				require.NoError(t, s.Set(tok))
				got, err := s.Get()
				require.NoError(t, err)
				assert.Equal(t, tok, got)
			}
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, NewFileStore(path).Set("abc123"))

	got, err := NewFileStore(path).Get()
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestFileStore_ReadsExactBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, NewFileStore(path).Set(" abc123\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, " abc123\n", string(data))

	got, err := NewFileStore(path).Get()
	require.NoError(t, err)
	assert.Equal(t, " abc123\n", got)
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank(""))
	assert.True(t, Blank(" \t\n"))
	assert.False(t, Blank(" a "))
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := filepath.Join(t.TempDir(), "state")
	s := NewFileStore(filepath.Join(dir, "token"))
	require.NoError(t, s.Set("abc123"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aiwave.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set("abc123"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("abc123"))
	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestSQLiteStore_ClosedDBErrorsWrapped(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get metadata[token]")

	err = s.Set("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set metadata[token]")

	err = s.Clear()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete metadata[token]")
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		TokenFile: filepath.Join(dir, "token"),
		DBPath:    filepath.Join(dir, "aiwave.db"),
	}

	tests := []struct {
		kind string
		want any
	}{
		{config.StoreFile, &FileStore{}},
		{config.StoreSQLite, &SQLiteStore{}},
		{config.StoreMemory, &MemoryStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg.TokenStore = tt.kind
			s, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}

	cfg.TokenStore = "cookie"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
