package reception_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheWaWaR/subotai/clock"
	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/reception"
)

func TestReceptions_ReceivesMatchingRpc(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	sender, err := hash.Random()
	require.NoError(t, err)

	r := reception.NewReceptions(hub).During(time.Second).OfKind(reception.KindPing)
	defer r.Close()

	rpc := reception.NewRpc(sender, reception.KindPing)
	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: rpc})

	got, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, rpc.MessageID, got.MessageID)
}

func TestReceptions_IgnoresNonMatchingKind(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	sender, err := hash.Random()
	require.NoError(t, err)

	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	r := reception.NewReceptions(hub, reception.WithClock(mock)).
		During(time.Hour).
		OfKind(reception.KindPingResponse)
	defer r.Close()

	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(sender, reception.KindPing)})
	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(sender, reception.KindPingResponse)})

	got, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, reception.KindPingResponse, got.Kind)
}

func TestReceptions_FiltersBySender(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	wanted, err := hash.Random()
	require.NoError(t, err)
	other, err := hash.Random()
	require.NoError(t, err)

	r := reception.NewReceptions(hub).During(time.Second).From(wanted)
	defer r.Close()

	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(other, reception.KindPing)})
	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(wanted, reception.KindPing)})

	got, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, wanted, got.SenderID)
}

func TestReceptions_DeadlineExpires(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	r := reception.NewReceptions(hub, reception.WithClock(mock)).During(0)
	defer r.Close()

	_, ok := r.Next()
	assert.False(t, ok)
}

func TestReceptions_ShutdownEndsIteration(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	r := reception.NewReceptions(hub).During(time.Second)
	defer r.Close()

	hub.Shutdown()

	_, ok := r.Next()
	assert.False(t, ok)
}

func TestReceptions_CloseUnblocksNext(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	r := reception.NewReceptions(hub).During(10 * time.Second)

	done := make(chan bool, 1)
	go func() {
		_, ok := r.Next()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	r.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock after Close")
	}
}

func TestReceptions_All_StopsAtDeadline(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	sender, err := hash.Random()
	require.NoError(t, err)

	r := reception.NewReceptions(hub).During(200 * time.Millisecond)
	defer r.Close()

	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(sender, reception.KindPing)})
	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(sender, reception.KindPing)})

	count := 0
	for range r.All() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestHub_MultipleSubscribersEachReceive(t *testing.T) {
	t.Parallel()

	hub := reception.NewHub(8)
	sender, err := hash.Random()
	require.NoError(t, err)

	r1 := reception.NewReceptions(hub).During(time.Second)
	defer r1.Close()
	r2 := reception.NewReceptions(hub).During(time.Second)
	defer r2.Close()

	hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: reception.NewRpc(sender, reception.KindPing)})

	_, ok1 := r1.Next()
	_, ok2 := r2.Next()
	assert.True(t, ok1)
	assert.True(t, ok2)
}
