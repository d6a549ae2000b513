package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := configDir
	configDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDir = prev })
	return dir
}

func TestTokenRoundTrip(t *testing.T) {
	dir := useTempDir(t)

	_, err := FetchToken("https://api.example.com")
	require.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, StoreToken("https://API.example.com/v1/", " secret "))
	got, err := FetchToken("https://api.example.com")
	require.NoError(t, err)
	require.Equal(t, "secret", got)

	raw, err := os.ReadFile(filepath.Join(dir, "contactimport", fileName))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret")

	info, err := os.Stat(filepath.Join(dir, "contactimport", fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, DeleteToken("https://api.example.com"))
	_, err = FetchToken("https://api.example.com")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestTokensAreKeyedByHost(t *testing.T) {
	useTempDir(t)
	require.NoError(t, StoreToken("https://a.example.com", "a"))
	require.NoError(t, StoreToken("https://b.example.com", "b"))

	a, err := FetchToken("https://a.example.com/anything")
	require.NoError(t, err)
	require.Equal(t, "a", a)
	b, err := FetchToken("https://b.example.com")
	require.NoError(t, err)
	require.Equal(t, "b", b)
}

func TestStoreTokenValidates(t *testing.T) {
	useTempDir(t)
	require.Error(t, StoreToken("not a url", "x"))
	require.Error(t, StoreToken("https://api.example.com", "  "))
}
