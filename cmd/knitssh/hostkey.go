package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	gossh "golang.org/x/crypto/ssh"
)

// ensureHostKey generates an ED25519 host key if it doesn't exist.
func ensureHostKey(path string, logger *log.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	logger.Info("generating new ED25519 host key", "path", path)

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	// OpenSSH format
	sshPrivKey, err := gossh.MarshalPrivateKey(privKey, "")
	if err != nil {
		return fmt.Errorf("marshaling private key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(sshPrivKey), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	sshPubKey, err := gossh.NewPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("creating public key: %w", err)
	}
	if err := os.WriteFile(path+".pub", gossh.MarshalAuthorizedKey(sshPubKey), 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	return nil
}
