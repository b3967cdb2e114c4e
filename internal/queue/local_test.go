package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/credit-ledger/internal/queue"
	"github.com/cyphera/credit-ledger/internal/types"
)

func testEvent(id string) types.WebhookEvent {
	return types.WebhookEvent{
		Kind:            types.WebhookPaymentSucceeded,
		Provider:        "stripe",
		ProviderEventID: id,
		Succeeded:       &types.PaymentSucceededEvent{ExternalID: id, AmountMinor: 500, Currency: "USD"},
	}
}

func TestLocalQueueEnqueueReceiveRoundTrip(t *testing.T) {
	q := queue.NewLocalQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testEvent("pi_1")))

	msgs, err := q.Receive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "pi_1", msgs[0].Event.Succeeded.ExternalID)
}

func TestLocalQueueReceiveIsNonBlockingWhenEmpty(t *testing.T) {
	q := queue.NewLocalQueue(4)
	msgs, err := q.Receive(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLocalQueueReceiveRespectsMax(t *testing.T) {
	q := queue.NewLocalQueue(8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(ctx, testEvent(string(rune('a'+i)))))
	}

	msgs, err := q.Receive(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	rest, err := q.Receive(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestLocalQueueDeleteDoesNotError(t *testing.T) {
	q := queue.NewLocalQueue(4)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, testEvent("pi_1")))

	msgs, err := q.Receive(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))
}
