package eventpub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/walletcore/wallet-engine/internal/domain"
)

func TestEmit(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()

	sub := client.Subscribe(ctx, "wallet.events")
	defer sub.Close()

	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := New(client, "wallet.events")

	want := domain.Event{
		Owner:         "alice",
		WalletID:      1,
		EventType:     domain.EventDeposit,
		Amount:        "100.00",
		Currency:      "USD",
		TransactionID: 7,
	}

	require.NoError(t, publisher.Emit(ctx, want))

	select {
	case msg := <-sub.Channel():
		var got domain.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}

func TestEmitUnreachableBroker(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	publisher := New(client, "wallet.events")

	err := publisher.Emit(context.Background(), domain.Event{EventType: domain.EventDeposit})
	require.Error(t, err)
}
