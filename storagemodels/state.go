/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "strconv"

// Address identifies an account that can own, create or pay for assets.
type Address string

func (a Address) String() string {
	return string(a)
}

// AssetID is the identifier assigned to an asset at mint time.
type AssetID uint64

func (id AssetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseAssetID parses the decimal form produced by AssetID.String.
func ParseAssetID(s string) (AssetID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return AssetID(v), nil
}

// AssetRecord is a minted asset. Creator never changes after mint.
type AssetRecord struct {
	Owner   Address `json:"owner" yaml:"owner"`
	Creator Address `json:"creator" yaml:"creator"`
	URI     string  `json:"uri" yaml:"uri"`
}

// State is the whole registry: the administrator, the mint counter, the asset
// table and the royalty table. A nil Admin means the registry was never
// initialized.
type State struct {
	Admin     *Address
	Counter   uint64
	Assets    map[AssetID]AssetRecord
	Royalties map[AssetID]uint64
}

// NewState returns an uninitialized state.
func NewState() *State {
	return &State{}
}

// Initialized reports whether the administrator slot has been written.
func (s *State) Initialized() bool {
	return s != nil && s.Admin != nil
}

// Clone returns a deep copy so a failed operation can be discarded.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{Counter: s.Counter}
	if s.Admin != nil {
		admin := *s.Admin
		c.Admin = &admin
	}
	if s.Assets != nil {
		c.Assets = make(map[AssetID]AssetRecord, len(s.Assets))
		for id, rec := range s.Assets {
			c.Assets[id] = rec
		}
	}
	if s.Royalties != nil {
		c.Royalties = make(map[AssetID]uint64, len(s.Royalties))
		for id, pct := range s.Royalties {
			c.Royalties[id] = pct
		}
	}
	return c
}
