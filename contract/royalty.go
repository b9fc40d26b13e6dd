/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contract

import (
	"math/big"

	"github.com/suparena/nftregistry/errors"
)

var (
	// MaxAmount and MinAmount bound payment amounts to a signed 128-bit integer.
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	MinAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

	hundred = big.NewInt(100)
)

// InAmountRange reports whether x fits in a signed 128-bit integer.
func InAmountRange(x *big.Int) bool {
	return x != nil && x.Cmp(MinAmount) >= 0 && x.Cmp(MaxAmount) <= 0
}

// RoyaltyAmount returns amount*pct/100, truncated toward zero.
// The amount and the intermediate product must fit in 128 signed bits.
func RoyaltyAmount(amount *big.Int, pct uint64) (*big.Int, error) {
	if !InAmountRange(amount) {
		return nil, errors.NewValidationError("amount", "must be a signed 128-bit integer")
	}
	product := new(big.Int).Mul(amount, new(big.Int).SetUint64(pct))
	if !InAmountRange(product) {
		return nil, errors.NewValidationError("amount", "royalty computation overflows 128 bits")
	}
	return product.Quo(product, hundred), nil
}
