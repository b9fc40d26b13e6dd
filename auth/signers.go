/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package auth provides Authorizer implementations for the registry.
package auth

import (
	"context"
	"sync"

	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/storagemodels"
)

// Signers grants authorization for exactly the addresses it holds, i.e. the
// addresses whose control the caller has already proven.
type Signers struct {
	mu  sync.RWMutex
	set map[storagemodels.Address]struct{}
}

// NewSigners returns a Signers holding addrs.
func NewSigners(addrs ...storagemodels.Address) *Signers {
	s := &Signers{set: make(map[storagemodels.Address]struct{}, len(addrs))}
	s.Add(addrs...)
	return s
}

// Add grants addrs. Empty addresses are ignored.
func (s *Signers) Add(addrs ...storagemodels.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range addrs {
		if a != "" {
			s.set[a] = struct{}{}
		}
	}
}

// Revoke withdraws addr.
func (s *Signers) Revoke(addr storagemodels.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.set, addr)
}

// Has reports whether addr is granted.
func (s *Signers) Has(addr storagemodels.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[addr]
	return ok
}

// RequireAuth implements contract.Authorizer.
func (s *Signers) RequireAuth(_ context.Context, addr storagemodels.Address) error {
	if !s.Has(addr) {
		return errors.NewAuthorizationError(string(addr), "no signature presented")
	}
	return nil
}
