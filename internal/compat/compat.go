// Package compat reads and writes the WebDAV password through the host's
// storage controller, tolerating both controller shapes the host has
// shipped: a plain Password attribute (legacy) and an asynchronous
// GetPassword/SetPassword pair (modern).
//
// The shape is found by probing the handle's capabilities on every call,
// never by looking at a host version. Errors returned by the host are
// passed through untouched.
package compat

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Backend is the storage controller the adapter asks the runner for.
const Backend = "webdav"

// ErrUnsupportedController is returned when a handle offers neither an
// invocable modern member nor a usable legacy attribute.
var ErrUnsupportedController = errors.New("unsupported storage controller shape")

// ErrNoSyncRunner is returned by an Adapter built without a sync runner.
var ErrNoSyncRunner = errors.New("no sync runner")

// SyncRunner hands out storage controller handles by backend name.
type SyncRunner interface {
	StorageController(ctx context.Context, backend string) (any, error)
}

// Controller is a handle resolved to a fixed dispatch.
type Controller interface {
	GetPassword(ctx context.Context) (string, error)
	SetPassword(ctx context.Context, secret string) error
	Shape() Shape
}

type resolvedController struct {
	shape Shape
	get   getFunc
	set   setFunc
}

// Resolve probes handle once and returns a Controller that dispatches
// straight to the chosen path. It fails only when neither operation has a
// usable path; a handle that supports just one of them resolves, and the
// other operation reports ErrUnsupportedController when called.
func Resolve(handle any) (Controller, error) {
	get, getPath := getterFor(handle)
	set, setPath := setterFor(handle)
	shape := Shape{Handle: handleType(handle), Get: getPath, Set: setPath}
	if getPath == PathUnsupported && setPath == PathUnsupported {
		return nil, fmt.Errorf("resolve %s: %w", shape.Handle, ErrUnsupportedController)
	}
	return &resolvedController{shape: shape, get: get, set: set}, nil
}

func (c *resolvedController) GetPassword(ctx context.Context) (string, error) {
	if c.get == nil {
		return "", fmt.Errorf("get password from %s: %w", c.shape.Handle, ErrUnsupportedController)
	}
	return c.get(ctx)
}

func (c *resolvedController) SetPassword(ctx context.Context, secret string) error {
	if c.set == nil {
		return fmt.Errorf("set password on %s: %w", c.shape.Handle, ErrUnsupportedController)
	}
	return c.set(ctx, secret)
}

func (c *resolvedController) Shape() Shape { return c.shape }

// Adapter looks up the webdav controller on every call. It keeps no state
// between calls and does no locking; ordering of concurrent writes is up
// to the host.
type Adapter struct {
	runner SyncRunner
}

func NewAdapter(runner SyncRunner) *Adapter {
	return &Adapter{runner: runner}
}

func (a *Adapter) handle(ctx context.Context) (any, error) {
	if a == nil || isNilRunner(a.runner) {
		return nil, ErrNoSyncRunner
	}
	return a.runner.StorageController(ctx, Backend)
}

func (a *Adapter) controller(ctx context.Context) (Controller, error) {
	handle, err := a.handle(ctx)
	if err != nil {
		return nil, err
	}
	return Resolve(handle)
}

// GetWebdavPassword returns the stored WebDAV password.
func (a *Adapter) GetWebdavPassword(ctx context.Context) (string, error) {
	c, err := a.controller(ctx)
	if err != nil {
		return "", err
	}
	return c.GetPassword(ctx)
}

// SetWebdavPassword replaces the stored WebDAV password. On the legacy path
// it returns as soon as the attribute has been assigned.
func (a *Adapter) SetWebdavPassword(ctx context.Context, secret string) error {
	c, err := a.controller(ctx)
	if err != nil {
		return err
	}
	return c.SetPassword(ctx, secret)
}

// Inspect reports the shape of the current webdav controller without
// reading or writing the password.
func (a *Adapter) Inspect(ctx context.Context) (Shape, error) {
	handle, err := a.handle(ctx)
	if err != nil {
		return Shape{}, err
	}
	return Probe(handle), nil
}

func GetWebdavPassword(ctx context.Context, runner SyncRunner) (string, error) {
	return NewAdapter(runner).GetWebdavPassword(ctx)
}

func SetWebdavPassword(ctx context.Context, runner SyncRunner, secret string) error {
	return NewAdapter(runner).SetWebdavPassword(ctx, secret)
}

// isNilRunner catches typed nils such as a (*host.Runner)(nil) stored in
// the interface.
func isNilRunner(runner SyncRunner) bool {
	if runner == nil {
		return true
	}
	v := reflect.ValueOf(runner)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
