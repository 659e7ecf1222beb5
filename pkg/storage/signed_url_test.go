package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour, nil)
	token, expiresAt, err := signer.Generate(7, "7/events.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	owner, path, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), owner)
	require.Equal(t, "7/events.csv", path)
}

func TestSignedURLSignerExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signer := NewSignedURLSigner("secret", time.Minute, func() time.Time { return now })
	token, _, err := signer.Generate(7, "7/events.csv")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour, nil)
	token, _, err := signer.Generate(7, "7/events.csv")
	require.NoError(t, err)

	forged := "8" + strings.TrimPrefix(token, "7")
	_, _, err = signer.Parse(forged)
	require.Error(t, err)

	_, _, err = NewSignedURLSigner("other", time.Hour, nil).Parse(token)
	require.Error(t, err)
}

func TestLocalStorageSaveOpenCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	name, err := store.Save("7/events.csv", []byte("id\n1\n"))
	require.NoError(t, err)
	file, err := store.Open(name)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "7", "events.csv"), old, old))

	deleted, err := store.CleanupOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, []string{"7/events.csv"}, deleted)
	require.NoError(t, store.Delete(name))
}

func TestLocalStorageRefusesEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	require.Error(t, err)
	_, err = store.Open("/etc/passwd")
	require.Error(t, err)
}
