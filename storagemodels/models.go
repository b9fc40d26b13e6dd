/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"sort"
	"strconv"
	"time"
)

// StateDocument is the persisted form of State for one named registry.
// Tables are stored as slices sorted by identifier so every backend can encode them.
type StateDocument struct {
	// Registry names the registry instance; it is the storage key.
	Registry string `json:"registry"`
	// Admin is empty for a document that was never initialized.
	Admin     string         `json:"admin"`
	Counter   uint64         `json:"counter"`
	Assets    []AssetEntry   `json:"assets"`
	Royalties []RoyaltyEntry `json:"royalties"`
	// Version is bumped on every committed write and guards concurrent writers.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AssetEntry is one row of the persisted asset table.
type AssetEntry struct {
	ID      uint64 `json:"id"`
	Owner   string `json:"owner"`
	Creator string `json:"creator"`
	URI     string `json:"uri"`
}

// RoyaltyEntry is one row of the persisted royalty table.
type RoyaltyEntry struct {
	ID         uint64 `json:"id"`
	Percentage uint64 `json:"percentage"`
}

// StoreVersion implements datastore.Versioned.
func (d StateDocument) StoreVersion() uint64 {
	return d.Version
}

// NewStateDocument captures st under the given registry name and version.
func NewStateDocument(registry string, st *State, version uint64) StateDocument {
	doc := StateDocument{
		Registry:  registry,
		Counter:   st.Counter,
		Version:   version,
		UpdatedAt: time.Now().UTC(),
		Assets:    make([]AssetEntry, 0, len(st.Assets)),
		Royalties: make([]RoyaltyEntry, 0, len(st.Royalties)),
	}
	if st.Admin != nil {
		doc.Admin = string(*st.Admin)
	}
	for id, rec := range st.Assets {
		doc.Assets = append(doc.Assets, AssetEntry{
			ID:      uint64(id),
			Owner:   string(rec.Owner),
			Creator: string(rec.Creator),
			URI:     rec.URI,
		})
	}
	for id, pct := range st.Royalties {
		doc.Royalties = append(doc.Royalties, RoyaltyEntry{ID: uint64(id), Percentage: pct})
	}
	sort.Slice(doc.Assets, func(i, j int) bool { return doc.Assets[i].ID < doc.Assets[j].ID })
	sort.Slice(doc.Royalties, func(i, j int) bool { return doc.Royalties[i].ID < doc.Royalties[j].ID })
	return doc
}

// State rebuilds the in-memory aggregate.
func (d StateDocument) State() *State {
	st := &State{Counter: d.Counter}
	if d.Admin == "" {
		return st
	}
	admin := Address(d.Admin)
	st.Admin = &admin
	st.Assets = make(map[AssetID]AssetRecord, len(d.Assets))
	for _, e := range d.Assets {
		st.Assets[AssetID(e.ID)] = AssetRecord{
			Owner:   Address(e.Owner),
			Creator: Address(e.Creator),
			URI:     e.URI,
		}
	}
	st.Royalties = make(map[AssetID]uint64, len(d.Royalties))
	for _, e := range d.Royalties {
		st.Royalties[AssetID(e.ID)] = e.Percentage
	}
	return st
}

// Balance is the holding of one payment asset by one address, kept by the payment ledger.
type Balance struct {
	// Key is BalanceKey(Asset, Holder); it is the storage key.
	Key    string `json:"key"`
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
	// Amount is a base-10 integer.
	Amount  string `json:"amount"`
	Version uint64 `json:"version"`
}

// StoreVersion implements datastore.Versioned.
func (b Balance) StoreVersion() uint64 {
	return b.Version
}

// BalanceKey builds the storage key for a holder's balance of asset. The asset
// is length-prefixed, so distinct pairs never share a key whatever bytes the
// addresses contain.
func BalanceKey(asset, holder Address) string {
	return strconv.Itoa(len(asset)) + ":" + string(asset) + ":" + string(holder)
}

// WriteCondition guards a conditional Put.
type WriteCondition struct {
	// IfNotExists rejects the write when an item with the same key is stored.
	IfNotExists bool
	// IfVersion rejects the write unless the stored item's Version equals it.
	IfVersion *uint64
}

// QueryParams selects items of one partition, ordered by sort key.
// Used for both regular queries and streaming queries.
type QueryParams struct {
	// PartitionKey is the expanded PK value, e.g. "REGISTRY#main#EVENTS".
	PartitionKey string
	// SortKeyPrefix optionally restricts results to sort keys with this prefix.
	SortKeyPrefix string
	// StartAfter resumes after the item with this sort key (exclusive).
	StartAfter string
	// Limit caps the number of items; zero means no limit for Query.
	Limit int32
	// Descending reverses the sort key order.
	Descending bool
}
