package mh

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenProvider caches the MH JWT for the whole process. Readers get
// the latest cached value; a refresh may race with in-flight
// submissions, which then fail with an auth error and retry top-level.
type TokenProvider struct {
	auth     AuthService
	user     string
	password string

	mu       sync.Mutex
	token    string
	tokenExp time.Time

	// how long a freshly issued token is trusted
	ttl time.Duration
	// how early before expiry to refresh
	refreshSkew time.Duration
}

func NewTokenProvider(auth AuthService, user, password string) *TokenProvider {
	return &TokenProvider{
		auth:        auth,
		user:        user,
		password:    password,
		ttl:         12 * time.Hour,
		refreshSkew: 30 * time.Second,
	}
}

// Token returns a valid cached token, authenticating when the cache is
// empty or about to expire.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	// fast path without refreshing
	if token, ok := p.currentIfValid(); ok {
		return token, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// double check after taking the lock
	if token, ok := p.currentIfValidLocked(); ok {
		return token, nil
	}

	return p.refreshLocked(ctx)
}

// Refresh discards the cached token and authenticates again.
func (p *TokenProvider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	return p.refreshLocked(ctx)
}

func (p *TokenProvider) currentIfValid() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentIfValidLocked()
}

func (p *TokenProvider) currentIfValidLocked() (string, bool) {
	if p.token == "" {
		return "", false
	}
	if p.tokenExp.IsZero() {
		return "", false
	}
	now := time.Now().UTC()
	if p.tokenExp.Sub(now) <= p.refreshSkew {
		return "", false
	}
	return p.token, true
}

func (p *TokenProvider) refreshLocked(ctx context.Context) (string, error) {
	log.Debug("TokenProvider: no valid cached token, authenticating")

	token, err := p.auth.Authenticate(ctx, p.user, p.password)
	if err != nil {
		return "", err
	}

	p.token = token
	p.tokenExp = time.Now().UTC().Add(p.ttl)
	return token, nil
}
