/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"

	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/storagemodels"
)

// StateStore persists the state aggregate of one named registry.
type StateStore struct {
	docs DataStore[storagemodels.StateDocument]
	name string
}

// NewStateStore returns a StateStore for the registry called name.
func NewStateStore(docs DataStore[storagemodels.StateDocument], name string) *StateStore {
	return &StateStore{docs: docs, name: name}
}

// Name returns the registry name used as the document key.
func (s *StateStore) Name() string {
	return s.name
}

// Load returns the stored state and its version.
// A registry without a stored document yields ErrUninitialized.
func (s *StateStore) Load(ctx context.Context) (*storagemodels.State, uint64, error) {
	doc, err := s.docs.GetOne(ctx, s.name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, 0, fmt.Errorf("registry %q: %w", s.name, errors.ErrUninitialized)
		}
		return nil, 0, fmt.Errorf("failed to load registry %q: %w", s.name, err)
	}
	if doc == nil || doc.Admin == "" {
		return nil, 0, fmt.Errorf("registry %q: %w", s.name, errors.ErrUninitialized)
	}
	return doc.State(), doc.Version, nil
}

// Create writes the first document. It fails with ErrAlreadyInitialized if one exists.
func (s *StateStore) Create(ctx context.Context, st *storagemodels.State) error {
	doc := storagemodels.NewStateDocument(s.name, st, 1)
	err := s.docs.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfNotExists: true})
	if err != nil {
		if errors.IsConditionFailed(err) || errors.IsAlreadyExists(err) {
			return fmt.Errorf("registry %q: %w", s.name, errors.ErrAlreadyInitialized)
		}
		return fmt.Errorf("failed to create registry %q: %w", s.name, err)
	}
	return nil
}

// Save replaces the document written at version with st.
// A concurrent writer makes it fail with ErrConditionFailed.
func (s *StateStore) Save(ctx context.Context, st *storagemodels.State, version uint64) error {
	doc := storagemodels.NewStateDocument(s.name, st, version+1)
	err := s.docs.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &version})
	if err != nil {
		return fmt.Errorf("failed to save registry %q: %w", s.name, err)
	}
	return nil
}
