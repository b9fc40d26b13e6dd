/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// NotificationKind tags an emitted notification.
type NotificationKind string

const (
	KindMint     NotificationKind = "mint"
	KindTransfer NotificationKind = "transfer"
)

// Notification is emitted by mint and transfer. Topics route the event
// ((owner, creator) for mint, (from, to) for transfer); Payload is the asset.
type Notification struct {
	Kind    NotificationKind `json:"kind" yaml:"kind"`
	Topics  []Address        `json:"topics" yaml:"topics"`
	Payload AssetID          `json:"payload" yaml:"payload"`
}

// NewMintNotification builds the notification for a successful mint.
func NewMintNotification(owner, creator Address, id AssetID) Notification {
	return Notification{Kind: KindMint, Topics: []Address{owner, creator}, Payload: id}
}

// NewTransferNotification builds the notification for a successful transfer.
func NewTransferNotification(from, to Address, id AssetID) Notification {
	return Notification{Kind: KindTransfer, Topics: []Address{from, to}, Payload: id}
}

// NotificationRecord is a notification as kept by the event log.
type NotificationRecord struct {
	Registry string `json:"registry"`
	// ID is a time-ordered UUID, so sort key order is emission order.
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Topics    []string  `json:"topics"`
	Payload   uint64    `json:"payload"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Notification converts the record back to the emitted value.
func (r NotificationRecord) Notification() Notification {
	topics := make([]Address, len(r.Topics))
	for i, t := range r.Topics {
		topics[i] = Address(t)
	}
	return Notification{Kind: NotificationKind(r.Kind), Topics: topics, Payload: AssetID(r.Payload)}
}
