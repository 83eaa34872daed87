// Package identity provides the current user for typing sessions.
package identity

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/verte-zerg/typecheck/internal/model"
)

// Provider holds the signed-in identity and notifies subscribers when it
// changes. The zero value is a signed-out provider.
type Provider struct {
	mu      sync.Mutex
	current *model.Identity
	nextID  int
	subs    map[int]func(*model.Identity)
}

// NewStatic returns a provider signed in as email, or signed out when email
// is blank.
func NewStatic(email, displayName string) *Provider {
	p := &Provider{}
	if id := FromProfile(email, displayName); id != nil {
		p.current = id
	}
	return p
}

// FromProfile builds an identity from profile fields. The key is derived
// from the normalized email so it is stable across runs.
func FromProfile(email, displayName string) *model.Identity {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &model.Identity{
		Key:         KeyFor(email),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
	}
}

// KeyFor returns the opaque identity key for an email address.
func KeyFor(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

// CurrentIdentity returns a copy of the signed-in identity, or nil.
func (p *Provider) CurrentIdentity() *model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	id := *p.current
	return &id
}

// Set replaces the identity and notifies subscribers. A nil id signs out.
func (p *Provider) Set(id *model.Identity) {
	p.mu.Lock()
	if id != nil {
		cp := *id
		id = &cp
	}
	p.current = id
	subs := make([]func(*model.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(p.CurrentIdentity())
	}
}

// Subscribe registers fn for identity changes and returns a function that
// removes it.
func (p *Provider) Subscribe(fn func(*model.Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subs == nil {
		p.subs = map[int]func(*model.Identity){}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}
