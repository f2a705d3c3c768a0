package broadcast_test

//go:generate mockgen -source=event.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"voteledger/internal/broadcast"
	"voteledger/internal/broadcast/mocks"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRingBuffer(t *testing.T) {
	b := broadcast.NewRingBuffer(3)
	for i := uint64(1); i <= 5; i++ {
		b.Enqueue(broadcast.Event{Sequence: i})
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, int64(2), b.Dropped())

	var seqs []uint64
	for _, e := range b.Since(0) {
		seqs = append(seqs, e.Sequence)
	}
	assert.Equal(t, []uint64{3, 4, 5}, seqs)
	assert.Len(t, b.Since(4), 1)
}

func TestHub(t *testing.T) {
	ctx := context.Background()
	hub := broadcast.NewHub(10)

	ch, cancel := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	require.NoError(t, hub.Publish(ctx, broadcast.Event{Sequence: 1, Type: broadcast.EventVoteCast}))
	select {
	case got := <-ch:
		assert.Equal(t, broadcast.EventVoteCast, got.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())
	assert.Len(t, hub.Since(0), 1)

	t.Run("slow subscriber never blocks publish", func(t *testing.T) {
		_, cancelSlow := hub.Subscribe()
		defer cancelSlow()
		for i := 0; i < 100; i++ {
			require.NoError(t, hub.Publish(ctx, broadcast.Event{Sequence: uint64(i + 2)}))
		}
	})

	t.Run("close disconnects subscribers", func(t *testing.T) {
		ch, _ := hub.Subscribe()
		hub.Close()
		_, open := <-ch
		assert.False(t, open)
		late, _ := hub.Subscribe()
		_, open = <-late
		assert.False(t, open)
	})
}

func TestMultiJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ok := mocks.NewMockPublisher(ctrl)
	failing := mocks.NewMockPublisher(ctrl)
	event := broadcast.Event{Type: broadcast.EventElectionCreated}

	ok.EXPECT().Publish(gomock.Any(), event).Return(nil)
	failing.EXPECT().Publish(gomock.Any(), event).Return(errors.New("redis down"))

	err := broadcast.Multi{ok, failing}.Publish(context.Background(), event)
	assert.ErrorContains(t, err, "redis down")
}

type dropCounter struct{ n atomic.Int32 }

func (d *dropCounter) IncrementDropped(string) { d.n.Add(1) }

func TestNotifierDeliversInOrderAndDrains(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	var mu sync.Mutex
	var got []uint64
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e broadcast.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Sequence)
		return nil
	}).Times(10)

	n := broadcast.NewNotifier(pub, 16, broadcast.WithLogger(quietLogger()))
	for i := 0; i < 10; i++ {
		assert.True(t, n.Notify(context.Background(), broadcast.Event{Type: broadcast.EventVoteCast}))
	}
	require.NoError(t, n.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
	assert.False(t, n.Notify(context.Background(), broadcast.Event{}), "closed notifier rejects events")
}

func TestNotifierNeverBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	release := make(chan struct{})
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, broadcast.Event) error {
		<-release
		return errors.New("late")
	}).AnyTimes()

	drops := &dropCounter{}
	n := broadcast.NewNotifier(pub, 2, broadcast.WithLogger(quietLogger()), broadcast.WithDropCounter(drops))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			n.Notify(context.Background(), broadcast.Event{Type: broadcast.EventVoteCast})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a stuck publisher")
	}
	assert.GreaterOrEqual(t, drops.n.Load(), int32(17))

	close(release)
	require.NoError(t, n.Close(context.Background()))
}
