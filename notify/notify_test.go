/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notify_test

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry/datastore/mock"
	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/storagemodels"
)

var (
	_ notify.Publisher = (*notify.Broker)(nil)
	_ notify.Publisher = (*notify.EventLog)(nil)
	_ notify.Publisher = notify.Fanout{}
)

func mintNote(id storagemodels.AssetID) storagemodels.Notification {
	return storagemodels.NewMintNotification("GOWNER", "GCREATOR", id)
}

func TestBroker_Subscribe(t *testing.T) {
	broker := notify.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	require.NoError(t, broker.Publish(ctx, []storagemodels.Notification{mintNote(1), mintNote(2)}))

	for i, want := range []storagemodels.AssetID{1, 2} {
		select {
		case d := <-ch:
			require.Equal(t, mintNote(want), d.Notification)
			require.Equal(t, uint64(i+1), d.Seq)
			require.False(t, d.At.IsZero())
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for notification")
		}
	}
}

func TestBroker_KindFilter(t *testing.T) {
	broker := notify.NewBroker()
	defer broker.Close()

	ctx := context.Background()
	transfers := broker.Subscribe(ctx, storagemodels.KindTransfer)
	all := broker.Subscribe(ctx)

	require.NoError(t, broker.Publish(ctx, []storagemodels.Notification{
		mintNote(1),
		storagemodels.NewTransferNotification("GOWNER", "GBUYER", 1),
	}))

	d := <-transfers
	assert.Equal(t, storagemodels.KindTransfer, d.Kind)
	assert.Equal(t, uint64(2), d.Seq, "sequence numbers count filtered kinds too")
	assert.Len(t, all, 2)
	assert.Len(t, transfers, 0)
	assert.Zero(t, broker.Dropped(), "filtered notifications are not drops")
}

func TestBroker_ContextCancellation(t *testing.T) {
	broker := notify.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_NonBlocking(t *testing.T) {
	broker := notify.NewBroker(notify.WithBuffer(1))
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	require.NoError(t, broker.Publish(context.Background(), []storagemodels.Notification{mintNote(1), mintNote(2), mintNote(3)}))

	d := <-ch
	require.Equal(t, storagemodels.AssetID(1), d.Payload)
	require.Equal(t, uint64(2), broker.Dropped())
}

func TestBroker_Close(t *testing.T) {
	broker := notify.NewBroker()
	ch := broker.Subscribe(context.Background())
	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.NoError(t, broker.Publish(context.Background(), []storagemodels.Notification{mintNote(1)}), "publishing after close is a no-op")

	_, ok = <-broker.Subscribe(context.Background())
	require.False(t, ok, "subscribing after close yields a closed channel")
}

func TestEventLog(t *testing.T) {
	ctx := context.Background()
	store := mock.New[storagemodels.NotificationRecord]()
	log := notify.NewEventLog(store, "main")
	other := notify.NewEventLog(store, "other")

	notes := []storagemodels.Notification{
		mintNote(1),
		mintNote(2),
		storagemodels.NewTransferNotification("GOWNER", "GBUYER", 1),
	}
	require.NoError(t, log.Publish(ctx, notes))
	require.NoError(t, other.Publish(ctx, []storagemodels.Notification{mintNote(9)}))

	t.Run("ListInOrder", func(t *testing.T) {
		records, err := log.List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, rec := range records {
			assert.Equal(t, "main", rec.Registry)
			assert.Equal(t, notes[i], rec.Notification())
			assert.False(t, rec.EmittedAt.IsZero())
		}
	})

	t.Run("Paging", func(t *testing.T) {
		first, err := log.List(ctx, notify.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first, 2)

		rest, err := log.List(ctx, notify.ListOptions{After: first[1].ID})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, storagemodels.KindTransfer, rest[0].Notification().Kind)
	})

	t.Run("Newest", func(t *testing.T) {
		latest, err := log.List(ctx, notify.ListOptions{Newest: true, Limit: 1})
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, string(storagemodels.KindTransfer), latest[0].Kind)
	})

	t.Run("Replay", func(t *testing.T) {
		var seen []storagemodels.Notification
		require.NoError(t, log.Replay(ctx, func(rec storagemodels.NotificationRecord) error {
			seen = append(seen, rec.Notification())
			return nil
		}))
		assert.Equal(t, notes, seen)

		stop := goerrors.New("stop")
		err := log.Replay(ctx, func(storagemodels.NotificationRecord) error { return stop })
		assert.ErrorIs(t, err, stop)
	})
}

func TestEventLogPublishError(t *testing.T) {
	boom := goerrors.New("write failed")
	log := notify.NewEventLog(mock.New[storagemodels.NotificationRecord]().WithPutError(boom), "main")

	err := log.Publish(context.Background(), []storagemodels.Notification{mintNote(1)})
	assert.ErrorIs(t, err, boom)
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	var got [][]storagemodels.Notification
	record := notify.PublisherFunc(func(_ context.Context, notes []storagemodels.Notification) error {
		got = append(got, notes)
		return nil
	})
	boom := goerrors.New("broken observer")
	broken := notify.PublisherFunc(func(context.Context, []storagemodels.Notification) error { return boom })

	notes := []storagemodels.Notification{mintNote(1)}
	err := notify.Fanout{broken, nil, record}.Publish(ctx, notes)

	assert.ErrorIs(t, err, boom)
	require.Len(t, got, 1, "later publishers still run")
	assert.Equal(t, notes, got[0])

	assert.NoError(t, notify.Fanout{}.Publish(ctx, notes))
}
