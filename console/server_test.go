package console

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func newPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	return key
}

func TestEnsureHostKeyCreatesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "ssh_host_key")
	first, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat host key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	second, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey reload: %v", err)
	}
	if ssh.FingerprintSHA256(first.PublicKey()) != ssh.FingerprintSHA256(second.PublicKey()) {
		t.Fatalf("expected the same key after reload")
	}
	if _, err := EnsureHostKey(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestAuthorizedKeysAllowedAndReload(t *testing.T) {
	alice := newPublicKey(t)
	bob := newPublicKey(t)
	path := filepath.Join(t.TempDir(), "authorized_keys")
	content := "# keys\n\n" + string(ssh.MarshalAuthorizedKey(alice))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write keys: %v", err)
	}
	keys, err := LoadAuthorizedKeys(path, nil)
	if err != nil {
		t.Fatalf("LoadAuthorizedKeys: %v", err)
	}
	if keys.Len() != 1 {
		t.Fatalf("expected one key, got %d", keys.Len())
	}
	if ok, err := keys.Allowed(alice); err != nil || !ok {
		t.Fatalf("expected alice allowed, got %v %v", ok, err)
	}
	if ok, _ := keys.Allowed(bob); ok {
		t.Fatalf("expected bob rejected")
	}

	content += string(ssh.MarshalAuthorizedKey(bob))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("rewrite keys: %v", err)
	}
	if ok, err := keys.Allowed(bob); err != nil || !ok {
		t.Fatalf("expected bob allowed after reload, got %v %v", ok, err)
	}
}

func TestAuthorizedKeysRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, []byte("not a key\n"), 0o600); err != nil {
		t.Fatalf("write keys: %v", err)
	}
	if _, err := LoadAuthorizedKeys(path, nil); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadAuthorizedKeys(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
