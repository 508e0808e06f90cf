package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/99designs/keyring"
	"github.com/sirupsen/logrus"

	"davcompat/internal/compat"
	"davcompat/internal/config"
	"davcompat/internal/host"
	"davcompat/internal/logging"
	"davcompat/internal/plugin"
)

type Service struct {
	cfg         config.Config
	log         *logrus.Logger
	openKeyring func(host.KeyringOptions) (keyring.Keyring, error)

	// writeMu serializes password writes with the prefs flush that
	// follows them.
	writeMu sync.Mutex
}

type Option func(*Service)

func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithKeyring makes the login store use ring instead of opening the OS
// keyring.
func WithKeyring(ring keyring.Keyring) Option {
	return func(s *Service) {
		s.openKeyring = func(host.KeyringOptions) (keyring.Keyring, error) { return ring, nil }
	}
}

func NewService(cfg config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:         cfg,
		log:         logging.Discard(),
		openKeyring: host.OpenKeyring,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() config.Config {
	return s.cfg
}

// session is one loaded host with the plugin started on it.
type session struct {
	host   *host.Host
	runner *host.Runner
	plugin *plugin.Plugin
}

func (s *Service) start(ctx context.Context) (*session, error) {
	opts := host.RunnerOptions{
		Store:     s.cfg.StoreKind(),
		PrefsPath: s.cfg.Paths.PrefsPath,
		LockPath:  s.cfg.Paths.LockPath,
	}
	if opts.Store == host.StoreLogin {
		ring, err := s.openKeyring(host.KeyringOptions{
			Backends:       s.cfg.Keyring.Backends,
			FileDir:        s.cfg.Keyring.FileDir,
			FilePassphrase: s.cfg.Keyring.Passphrase,
		})
		if err != nil {
			return nil, WrapExit(ExitHostFailure, err)
		}
		opts.Keyring = ring
	}
	runner, err := host.NewRunner(opts)
	if err != nil {
		return nil, WrapExit(ExitUserError, err)
	}
	h := host.New(runner)
	p := plugin.New(plugin.Options{AddonInstance: s.cfg.AddonInstance})
	if err := p.Startup(ctx, h); err != nil {
		return nil, WrapExit(ExitHostFailure, err)
	}
	s.log.WithFields(logrus.Fields{
		"store": opts.Store,
		"addon": p.InstanceName(),
	}).Debug("plugin started")
	return &session{host: h, runner: runner, plugin: p}, nil
}

func (s *Service) close(sess *session) {
	sess.plugin.Shutdown(sess.host)
}

func (s *Service) inspect(ctx context.Context, sess *session) (InspectResult, error) {
	shape, err := sess.plugin.WebdavShape(ctx)
	if err != nil {
		return InspectResult{}, WrapExit(ExitHostFailure, err)
	}
	s.log.WithFields(logrus.Fields{
		"handle": shape.Handle,
		"get":    shape.Get,
		"set":    shape.Set,
	}).Debug("probed webdav controller")
	return InspectResult{
		Store:         string(sess.runner.Store()),
		AddonInstance: sess.plugin.InstanceName(),
		Handle:        shape.Handle,
		GetPath:       shape.Get,
		SetPath:       shape.Set,
		Paths:         s.cfg.Paths,
	}, nil
}

func (s *Service) Inspect(ctx context.Context) (InspectResult, error) {
	sess, err := s.start(ctx)
	if err != nil {
		return InspectResult{}, err
	}
	defer s.close(sess)
	return s.inspect(ctx, sess)
}

// GetPassword reads the WebDAV password. Unless reveal is set the result
// carries a redacted form.
func (s *Service) GetPassword(ctx context.Context, reveal bool) (PasswordResult, error) {
	sess, err := s.start(ctx)
	if err != nil {
		return PasswordResult{}, err
	}
	defer s.close(sess)

	inspect, err := s.inspect(ctx, sess)
	if err != nil {
		return PasswordResult{}, err
	}
	password, err := sess.plugin.WebdavPassword(ctx)
	if err != nil {
		return PasswordResult{}, wrapHostError(err)
	}
	out := PasswordResult{Store: inspect.Store, Path: inspect.GetPath, Password: password}
	if !reveal {
		out.Password = logging.Redact(password)
		out.Redacted = true
	}
	return out, nil
}

func (s *Service) SetPassword(ctx context.Context, secret string) (SetResult, error) {
	if err := validateSecret(secret); err != nil {
		return SetResult{}, WrapExit(ExitUserError, err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess, err := s.start(ctx)
	if err != nil {
		return SetResult{}, err
	}
	defer s.close(sess)

	inspect, err := s.inspect(ctx, sess)
	if err != nil {
		return SetResult{}, err
	}
	if err := sess.plugin.SetWebdavPassword(ctx, secret); err != nil {
		return SetResult{}, wrapHostError(err)
	}
	if err := sess.runner.Flush(); err != nil {
		return SetResult{}, WrapExit(ExitIOFailure, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := saveState(s.cfg.Paths.StatePath, StateFile{
		LastSetAt:    now,
		LastSetStore: inspect.Store,
		LastSetPath:  inspect.SetPath,
	}); err != nil {
		return SetResult{}, WrapExit(ExitIOFailure, err)
	}
	s.log.WithFields(logrus.Fields{
		"store": inspect.Store,
		"path":  inspect.SetPath,
	}).Info("webdav password updated")
	return SetResult{Store: inspect.Store, Path: inspect.SetPath, SetAt: now}, nil
}

// wrapHostError maps a failed password operation to an exit code. A
// controller shape that cannot serve the operation is not a host failure.
func wrapHostError(err error) error {
	if errors.Is(err, compat.ErrUnsupportedController) {
		return WrapExit(ExitUnsupported, err)
	}
	return WrapExit(ExitHostFailure, err)
}
