package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu    sync.Mutex
	links []string
}

func (s *captureSender) SendLink(_ context.Context, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, link)
	return nil
}

func (s *captureSender) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.links...)
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "one"))
	require.NoError(t, q.Send(ctx, "two"))

	messages, err := q.Receive(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Body)
	assert.Equal(t, "two", messages[1].Body)

	messages, err = q.Receive(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestPublisherAndWorkerDeliverReceipt(t *testing.T) {
	q := NewMemoryQueue(4)
	sender := &captureSender{}
	publisher := NewPublisher(q, nil)
	worker := NewWorker(q, sender, nil)

	receipt := Receipt{
		BarbershopID:   "shop-1",
		BarbershopName: "Barbearia Central",
		ClientPhone:    "841234567",
		AmountMT:       "150.00",
		Code:           "PP260116.2026.W22156",
		Method:         "emola",
	}
	require.NoError(t, publisher.EnqueueReceipt(context.Background(), receipt))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		// Give the worker time to drain the single message.
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	links := sender.all()
	require.Len(t, links, 1)
	assert.True(t, strings.HasPrefix(links[0], "https://wa.me/258841234567?text="))
	assert.Contains(t, links[0], "PP260116.2026.W22156")
}

type brokenQueue struct {
	mu       sync.Mutex
	receives int
	cancel   context.CancelFunc
}

func (q *brokenQueue) Send(context.Context, string) error { return nil }

func (q *brokenQueue) Receive(context.Context, int, int) ([]QueueMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receives++
	if q.receives == 1 {
		q.cancel()
	}
	return nil, assert.AnError
}

func (q *brokenQueue) Delete(context.Context, string) error { return nil }

func (q *brokenQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.receives
}

func TestWorkerBacksOffWhenReceiveFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &brokenQueue{cancel: cancel}
	worker := NewWorker(q, &captureSender{}, nil)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
	// The failed poll waits out the retry delay instead of spinning, so
	// cancellation interrupts it after a single Receive call.
	assert.Equal(t, 1, q.count())
}

func TestWorkerRejectsUnusablePhone(t *testing.T) {
	w := NewWorker(NewMemoryQueue(1), &captureSender{}, nil)
	err := w.process(context.Background(), `{"client_phone":"12345","amount_mt":"10.00","code":"X"}`)
	assert.Error(t, err)
}
