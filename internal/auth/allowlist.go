// Package auth handles SSH public key authentication and customer identity.
package auth

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrAllowlistNotFound is returned when the allowlist file doesn't exist.
var ErrAllowlistNotFound = errors.New("allowlist file not found")

// Allowlist is a set of public keys permitted to open a shop session.
type Allowlist struct {
	keys [][]byte
}

// LoadAllowlist reads an OpenSSH authorized_keys format file. Empty lines,
// comments and unparseable lines are skipped.
func LoadAllowlist(path string) (*Allowlist, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAllowlistNotFound
		}
		return nil, fmt.Errorf("opening allowlist: %w", err)
	}
	defer file.Close()

	list := &Allowlist{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pubKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue
		}
		list.Add(pubKey)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading allowlist: %w", err)
	}

	return list, nil
}

// Add permits key.
func (a *Allowlist) Add(key ssh.PublicKey) {
	a.keys = append(a.keys, key.Marshal())
}

// Contains reports whether key is permitted.
func (a *Allowlist) Contains(key ssh.PublicKey) bool {
	if a == nil || key == nil {
		return false
	}

	keyBytes := key.Marshal()
	for _, allowed := range a.keys {
		if bytes.Equal(keyBytes, allowed) {
			return true
		}
	}
	return false
}

// Len returns the number of permitted keys.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// CreateEmptyAllowlist creates an empty allowlist file with a helpful comment.
func CreateEmptyAllowlist(path string) error {
	content := `# Cozy Knits Co. shop allowlist
# Add one public key per line in OpenSSH authorized_keys format.
# Example:
# ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIExample... user@host
`
	return os.WriteFile(path, []byte(content), 0o644)
}

// Fingerprint returns the SHA256 fingerprint used to namespace a customer's
// saved cart. A nil key yields "".
func Fingerprint(key ssh.PublicKey) string {
	if key == nil {
		return ""
	}
	return ssh.FingerprintSHA256(key)
}
