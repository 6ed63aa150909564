// Package config is the parameter store the workflow reads at start.
// Keys mirror the host system's configuration parameters; values can be
// seeded from a YAML file or set programmatically.
package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// Well-known parameter keys.
const (
	ParamAPIUser     = "dte.api_user"
	ParamAPIPassword = "dte.api_password"
	ParamMHURL       = "dte.mh_url"
	ParamFirmadorURL = "dte.firmador_url"
	ParamNit         = "dte.nit"
	ParamKeyPass     = "dte.key_pass"
	ParamCertPath    = "dte.cert_path"
	ParamKeyPath     = "dte.key_path"
	ParamAmbiente    = "dte.ambiente"
)

// Params is the read/write parameter surface. The workflow only reads;
// writes happen from configuration tooling (credential import).
type Params interface {
	GetParam(key string) (string, bool)
	SetParam(key, value string)
}

type MemoryParams struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryParams() *MemoryParams {
	return &MemoryParams{values: make(map[string]string)}
}

func (p *MemoryParams) GetParam(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *MemoryParams) SetParam(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// FromYAMLFile loads a flat key/value YAML document into a MemoryParams.
func FromYAMLFile(path string) (*MemoryParams, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	p := NewMemoryParams()
	for k, v := range values {
		p.SetParam(k, v)
	}
	return p, nil
}

// Config is the resolved workflow configuration, read once at start.
type Config struct {
	MHURL       string
	FirmadorURL string
	APIUser     string
	APIPassword string
	Nit         string
	KeyPass     string
	Ambiente    string

	AuthTimeout     time.Duration
	SignTimeout     time.Duration
	TransmitTimeout time.Duration
}

// Load resolves the workflow configuration from the parameter store.
// Endpoint URLs are normalized without a trailing slash.
func Load(p Params) (*Config, error) {
	cfg := &Config{
		AuthTimeout:     60 * time.Second,
		SignTimeout:     120 * time.Second,
		TransmitTimeout: 120 * time.Second,
		Ambiente:        "00",
	}

	var err error
	if cfg.MHURL, err = required(p, ParamMHURL); err != nil {
		return nil, err
	}
	if cfg.FirmadorURL, err = required(p, ParamFirmadorURL); err != nil {
		return nil, err
	}
	if cfg.APIUser, err = required(p, ParamAPIUser); err != nil {
		return nil, err
	}
	if cfg.APIPassword, err = required(p, ParamAPIPassword); err != nil {
		return nil, err
	}
	if cfg.Nit, err = required(p, ParamNit); err != nil {
		return nil, err
	}

	if v, ok := p.GetParam(ParamKeyPass); ok {
		cfg.KeyPass = v
	}
	if v, ok := p.GetParam(ParamAmbiente); ok && v != "" {
		cfg.Ambiente = v
	}

	cfg.MHURL = strings.TrimRight(cfg.MHURL, "/")
	cfg.FirmadorURL = strings.TrimRight(cfg.FirmadorURL, "/")
	return cfg, nil
}

func required(p Params, key string) (string, error) {
	v, ok := p.GetParam(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", errors.Errorf("missing required parameter %s", key)
	}
	return strings.TrimSpace(v), nil
}
