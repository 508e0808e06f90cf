// Package plugin is the addon singleton the host loads at startup.
package plugin

import (
	"context"
	"errors"
	"sync"

	"davcompat/internal/compat"
	"davcompat/internal/host"
)

var ErrNotStarted = errors.New("plugin not started")

type Options struct {
	// AddonInstance is the name the plugin publishes itself under on the
	// host object.
	AddonInstance string
}

type Plugin struct {
	opts Options

	mu      sync.RWMutex
	webdav  *compat.Adapter
	started bool
}

func New(opts Options) *Plugin {
	return &Plugin{opts: opts}
}

func (p *Plugin) InstanceName() string {
	return p.opts.AddonInstance
}

// Startup registers the plugin on h and connects the webdav adapter to
// the host's sync runner. A host without a sync runner is refused.
func (p *Plugin) Startup(ctx context.Context, h *host.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.SyncRunner() == nil {
		return compat.ErrNoSyncRunner
	}
	if err := h.Register(p.opts.AddonInstance, p); err != nil {
		return err
	}
	p.mu.Lock()
	p.webdav = compat.NewAdapter(h.SyncRunner())
	p.started = true
	p.mu.Unlock()
	return nil
}

func (p *Plugin) Shutdown(h *host.Host) {
	h.Unregister(p.opts.AddonInstance)
	p.mu.Lock()
	p.webdav = nil
	p.started = false
	p.mu.Unlock()
}

func (p *Plugin) adapter() (*compat.Adapter, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.started {
		return nil, ErrNotStarted
	}
	return p.webdav, nil
}

func (p *Plugin) WebdavPassword(ctx context.Context) (string, error) {
	a, err := p.adapter()
	if err != nil {
		return "", err
	}
	return a.GetWebdavPassword(ctx)
}

func (p *Plugin) SetWebdavPassword(ctx context.Context, secret string) error {
	a, err := p.adapter()
	if err != nil {
		return err
	}
	return a.SetWebdavPassword(ctx, secret)
}

func (p *Plugin) WebdavShape(ctx context.Context) (compat.Shape, error) {
	a, err := p.adapter()
	if err != nil {
		return compat.Shape{}, err
	}
	return a.Inspect(ctx)
}
