package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper reads the pepper from file, generating and persisting a new one
// when the file does not exist yet. It must run before the first hash.
func LoadPepper(file string) error {
	if strings.TrimSpace(file) == "" {
		return errors.New("cryptox: empty pepper path")
	}

	p, err := loadOrGeneratePepper(filepath.Clean(file))
	if err != nil {
		return err
	}
	SetPepper(p)
	return nil
}

// SetPepper installs a pepper directly. Tests use it to avoid touching disk.
func SetPepper(p string) {
	pepperMu.Lock()
	pepper = p
	pepperMu.Unlock()
}

// currentPepper returns the loaded pepper. A process that never loaded one
// gets an ephemeral random pepper, so hashes do not survive a restart.
func currentPepper() string {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper == "" {
		pepper = randomPepper()
	}
	return pepper
}

func randomPepper() string {
	b := make([]byte, keyLength)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func loadOrGeneratePepper(file string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	b, err := os.ReadFile(file) // #nosec G304 - path comes from operator config
	switch {
	case err == nil:
		p := strings.TrimSpace(string(b))
		if p == "" {
			return "", errors.New("cryptox: pepper file is empty")
		}
		return p, nil
	case errors.Is(err, os.ErrNotExist):
		p := randomPepper()
		if err := os.WriteFile(file, []byte(p), 0600); err != nil {
			return "", err
		}
		return p, nil
	default:
		return "", err
	}
}
