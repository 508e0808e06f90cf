package host

import (
	"context"
	"errors"

	"github.com/99designs/keyring"
)

const (
	KeyringService = "davcompat"
	loginKey       = "webdav"
)

// LoginController is the modern controller shape: the password sits in
// the login manager and is reached through blocking method calls.
type LoginController struct {
	ring keyring.Keyring
}

func NewLoginController(ring keyring.Keyring) *LoginController {
	return &LoginController{ring: ring}
}

// GetPassword returns the stored password, or "" when none is stored.
func (c *LoginController) GetPassword(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	item, err := c.ring.Get(loginKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(item.Data), nil
}

func (c *LoginController) SetPassword(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.ring.Set(keyring.Item{
		Key:         loginKey,
		Data:        []byte(secret),
		Label:       KeyringService,
		Description: "WebDAV storage password",
	})
}

type KeyringOptions struct {
	// Backends restricts the keyring backends tried, in order. Empty means
	// the platform default order.
	Backends []string
	// FileDir and FilePassphrase configure the encrypted file backend.
	FileDir        string
	FilePassphrase string
}

// OpenKeyring opens the OS keyring used by the login store.
func OpenKeyring(opts KeyringOptions) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:      KeyringService,
		FileDir:          opts.FileDir,
		FilePasswordFunc: keyring.TerminalPrompt,
	}
	for _, backend := range opts.Backends {
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.BackendType(backend))
	}
	if opts.FilePassphrase != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassphrase)
	}
	return keyring.Open(cfg)
}
