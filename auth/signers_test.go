/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry/auth"
	"github.com/suparena/nftregistry/contract"
	"github.com/suparena/nftregistry/errors"
)

var _ contract.Authorizer = (*auth.Signers)(nil)

func TestSigners(t *testing.T) {
	ctx := context.Background()
	s := auth.NewSigners("GALICE", "")

	require.NoError(t, s.RequireAuth(ctx, "GALICE"))

	err := s.RequireAuth(ctx, "GBOB")
	assert.True(t, errors.IsUnauthorized(err), "got %v", err)
	assert.Contains(t, err.Error(), "GBOB")

	err = s.RequireAuth(ctx, "")
	assert.True(t, errors.IsUnauthorized(err), "empty addresses are never granted")

	s.Add("GBOB")
	assert.True(t, s.Has("GBOB"))
	require.NoError(t, s.RequireAuth(ctx, "GBOB"))

	s.Revoke("GALICE")
	assert.False(t, s.Has("GALICE"))
	assert.True(t, errors.IsUnauthorized(s.RequireAuth(ctx, "GALICE")))
}
