/*
Package errors provides semantic error types for the NFT registry.

Registry operations fail with one of a fixed set of kinds, each a sentinel
that can be checked using the standard errors.Is() function or the provided
helper functions:

	var (
	    ErrAlreadyInitialized = errors.New("registry already initialized")
	    ErrUninitialized      = errors.New("registry not initialized")
	    ErrNotFound           = errors.New("entity not found")
	    ErrNotOwner           = errors.New("caller is not the owner")
	    ErrUnauthorized       = errors.New("authorization failed")
	    ErrPaymentFailed      = errors.New("payment failed")
	)

Storage backends additionally report ErrAlreadyExists, ErrInvalidInput,
ErrConditionFailed and ErrNoIndexMap.

Usage:

	err := reg.Transfer(ctx, from, to, 7)
	if err != nil {
	    if errors.IsNotOwner(err) {
	        // Caller no longer holds the asset
	        return fmt.Errorf("asset 7 moved before the transfer: %w", err)
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("Asset", "7")
	err := errors.NewNotOwnerError(7, "GSTRANGER", "GOWNER")
	err := errors.NewAuthorizationError("GCREATOR", "no signature")

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
