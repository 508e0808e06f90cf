package app

import (
	"davcompat/internal/compat"
	"davcompat/internal/config"
)

type InspectResult struct {
	Store         string       `json:"store"`
	AddonInstance string       `json:"addonInstance"`
	Handle        string       `json:"handle"`
	GetPath       compat.Path  `json:"getPath"`
	SetPath       compat.Path  `json:"setPath"`
	Paths         config.Paths `json:"paths"`
}

type StatusResult struct {
	InspectResult
	Addons       []string    `json:"addons"`
	HasPassword  bool        `json:"hasPassword"`
	LastSetAt    string      `json:"lastSetAt,omitempty"`
	LastSetStore string      `json:"lastSetStore,omitempty"`
	LastSetPath  compat.Path `json:"lastSetPath,omitempty"`
}

type PasswordResult struct {
	Store    string      `json:"store"`
	Path     compat.Path `json:"path"`
	Password string      `json:"password"`
	Redacted bool        `json:"redacted,omitempty"`
}

type SetResult struct {
	Store string      `json:"store"`
	Path  compat.Path `json:"path"`
	SetAt string      `json:"setAt"`
}

type StateFile struct {
	Version      int         `json:"version"`
	LastSetAt    string      `json:"lastSetAt,omitempty"`
	LastSetStore string      `json:"lastSetStore,omitempty"`
	LastSetPath  compat.Path `json:"lastSetPath,omitempty"`
}
