/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suparena/nftregistry/storagemodels"
)

const defaultBufferSize = 64

// Delivery is one notification as handed to a live subscriber.
type Delivery struct {
	storagemodels.Notification
	// Seq numbers notifications in publish order, starting at 1. Gaps on a
	// subscriber's channel are either filtered kinds or drops.
	Seq uint64
	At  time.Time
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithBuffer sets how many undelivered notifications each subscriber may hold.
func WithBuffer(n int) BrokerOption {
	return func(b *Broker) {
		if n >= 0 {
			b.buffer = n
		}
	}
}

type subscription struct {
	ch    chan Delivery
	kinds map[storagemodels.NotificationKind]struct{}
}

func (s *subscription) wants(kind storagemodels.NotificationKind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[kind]
	return ok
}

// Broker hands registry notifications to live in-process subscribers.
// Publish never waits on a subscriber.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	closed bool
	done   chan struct{}
	buffer int

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewBroker returns an open Broker.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		subs:   make(map[*subscription]struct{}),
		done:   make(chan struct{}),
		buffer: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe returns a channel receiving every later notification of the given
// kinds, or of every kind when none is named. The channel is closed when ctx
// ends or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, kinds ...storagemodels.NotificationKind) <-chan Delivery {
	s := &subscription{ch: make(chan Delivery, b.buffer)}
	if len(kinds) > 0 {
		s.kinds = make(map[storagemodels.NotificationKind]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(s)
		case <-b.done:
		}
	}()
	return s.ch
}

func (b *Broker) unsubscribe(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

// Publish implements Publisher. A subscriber whose buffer is full misses the
// notification, which is counted by Dropped.
func (b *Broker) Publish(_ context.Context, notes []storagemodels.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	now := time.Now()
	for _, n := range notes {
		d := Delivery{Notification: n, Seq: b.seq.Add(1), At: now}
		for s := range b.subs {
			if !s.wants(n.Kind) {
				continue
			}
			select {
			case s.ch <- d:
			default:
				b.dropped.Add(1)
			}
		}
	}
	return nil
}

// Close ends every subscription. Later publishes are ignored and later
// subscriptions receive an already closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for s := range b.subs {
		close(s.ch)
	}
	clear(b.subs)
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}
