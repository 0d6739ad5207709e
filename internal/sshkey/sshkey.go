// Package sshkey generates ed25519 keys for GitHub and checks that GitHub
// accepts them.
package sshkey

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultName is the file name of keys generated without one.
const DefaultName = "id_ed25519_github"

// GitHubHost is the address checked by CheckGitHub.
const GitHubHost = "git@github.com"

// authenticatedMarker is what GitHub prints after accepting a key.
const authenticatedMarker = "successfully authenticated"

var ErrKeyExists = errors.New("key file already exists")

// KeyPair describes a generated key on disk.
type KeyPair struct {
	PrivatePath   string
	PublicPath    string
	AuthorizedKey string
	Fingerprint   string
}

// DefaultDir returns ~/.ssh.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh"), nil
}

// Generate writes an unencrypted ed25519 key pair to dir/name and
// dir/name.pub. Existing files are never overwritten.
func Generate(dir, name, comment string) (*KeyPair, error) {
	if name == "" {
		name = DefaultName
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return nil, fmt.Errorf("key name %q must not contain a path separator", name)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	privPath := filepath.Join(dir, name)
	pubPath := privPath + ".pub"
	for _, path := range []string{privPath, pubPath} {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%s: %w", path, ErrKeyExists)
		}
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}

	file, err := os.OpenFile(privPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}
	if err := pem.Encode(file, block); err != nil {
		_ = file.Close()
		_ = os.Remove(privPath)
		return nil, fmt.Errorf("encode private key: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close private key: %w", err)
	}

	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, err
	}
	authorized := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(signer.PublicKey())))
	if comment != "" {
		authorized += " " + comment
	}
	if err := os.WriteFile(pubPath, []byte(authorized+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}

	return &KeyPair{
		PrivatePath:   privPath,
		PublicPath:    pubPath,
		AuthorizedKey: authorized,
		Fingerprint:   ssh.FingerprintSHA256(signer.PublicKey()),
	}, nil
}

// PublicKeys returns the *.pub files in dir, sorted.
func PublicKeys(dir string) ([]string, error) {
	keys, err := filepath.Glob(filepath.Join(dir, "*.pub"))
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Fingerprint returns the SHA256 fingerprint of the public key file at path.
// It fails when the file is not an authorized_keys style public key.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", fmt.Errorf("%s is not a public key: %w", path, err)
	}
	return ssh.FingerprintSHA256(pub), nil
}

// Checker runs ssh -T against GitHub.
type Checker struct {
	// Binary overrides the ssh executable, mainly for tests.
	Binary  string
	Timeout time.Duration
}

// CheckGitHub reports whether GitHub accepted one of the user's keys,
// together with what ssh printed. GitHub exits 1 even on success, so the
// answer comes from the output.
func (c *Checker) CheckGitHub(ctx context.Context) (bool, string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "ssh"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "-T",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout="+fmt.Sprint(max(1, int(timeout.Seconds()))),
		GitHubHost)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if ctx.Err() == context.DeadlineExceeded {
		return false, output, fmt.Errorf("ssh to %s timed out after %s", GitHubHost, timeout)
	}
	if strings.Contains(output, authenticatedMarker) {
		return true, output, nil
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return false, output, fmt.Errorf("failed to run %s: %w", bin, err)
	}
	return false, output, nil
}
