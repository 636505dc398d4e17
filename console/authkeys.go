package console

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"pkt.systems/pslog"
)

// AuthorizedKeys is an authorized_keys file that is re-read when it changes
// on disk.
type AuthorizedKeys struct {
	path string
	log  pslog.Logger

	mu      sync.RWMutex
	keys    []ssh.PublicKey
	modTime time.Time
	size    int64
}

// LoadAuthorizedKeys reads path. A missing file is an error so the server
// never starts without any way to log in.
func LoadAuthorizedKeys(path string, log pslog.Logger) (*AuthorizedKeys, error) {
	a := &AuthorizedKeys{path: path, log: log}
	if err := a.reload(); err != nil {
		return nil, err
	}
	return a, nil
}

// Len returns the number of loaded keys.
func (a *AuthorizedKeys) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.keys)
}

// Allowed reports whether key is listed.
func (a *AuthorizedKeys) Allowed(key ssh.PublicKey) (bool, error) {
	if err := a.refreshIfNeeded(); err != nil {
		return false, err
	}
	wire := key.Marshal()
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, k := range a.keys {
		if bytes.Equal(k.Marshal(), wire) {
			return true, nil
		}
	}
	return false, nil
}

func (a *AuthorizedKeys) refreshIfNeeded() error {
	info, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("stat authorized keys: %w", err)
	}
	a.mu.RLock()
	unchanged := info.ModTime().Equal(a.modTime) && info.Size() == a.size
	a.mu.RUnlock()
	if unchanged {
		return nil
	}
	return a.reload()
}

func (a *AuthorizedKeys) reload() error {
	info, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("stat authorized keys: %w", err)
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("read authorized keys: %w", err)
	}
	keys, err := parseAuthorizedKeys(data)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.keys = keys
	a.modTime = info.ModTime()
	a.size = info.Size()
	a.mu.Unlock()
	if a.log != nil {
		a.log.Debug("authorized keys loaded", "path", a.path, "keys", len(keys))
	}
	return nil
}

func parseAuthorizedKeys(data []byte) ([]ssh.PublicKey, error) {
	var keys []ssh.PublicKey
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("authorized keys line %d: %w", i+1, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
