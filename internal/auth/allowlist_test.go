package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func newKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return key
}

func TestLoadAllowlist(t *testing.T) {
	alice := newKey(t)
	bob := newKey(t)
	mallory := newKey(t)

	content := strings.Join([]string{
		"# shop customers",
		"",
		strings.TrimSpace(string(ssh.MarshalAuthorizedKey(alice))) + " alice@laptop",
		"not a key",
		string(ssh.MarshalAuthorizedKey(bob)),
	}, "\n")

	path := filepath.Join(t.TempDir(), "allowlist")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	list, err := LoadAllowlist(path)
	require.NoError(t, err)

	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Contains(alice))
	assert.True(t, list.Contains(bob))
	assert.False(t, list.Contains(mallory))
	assert.False(t, list.Contains(nil))
}

func TestLoadAllowlistMissing(t *testing.T) {
	_, err := LoadAllowlist(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrAllowlistNotFound)
}

func TestCreateEmptyAllowlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist")
	require.NoError(t, CreateEmptyAllowlist(path))

	list, err := LoadAllowlist(path)
	require.NoError(t, err)
	assert.Zero(t, list.Len())
}

func TestNilAllowlist(t *testing.T) {
	var list *Allowlist
	assert.False(t, list.Contains(newKey(t)))
	assert.Zero(t, list.Len())
}

func TestFingerprint(t *testing.T) {
	key := newKey(t)

	fp := Fingerprint(key)
	assert.True(t, strings.HasPrefix(fp, "SHA256:"))
	assert.Equal(t, fp, Fingerprint(key))
	assert.NotEqual(t, fp, Fingerprint(newKey(t)))
	assert.Empty(t, Fingerprint(nil))
}
