package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTickerDeliversAndStops(t *testing.T) {
	tk := NewTicker(context.Background(), 5*time.Millisecond)
	select {
	case _, ok := <-tk.C:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("no tick delivered")
	}
	tk.Stop()
	tk.Stop()

	_, ok := <-tk.C
	require.False(t, ok, "channel must be closed after Stop")
}

func TestTickerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tk := NewTicker(ctx, time.Hour)
	cancel()
	select {
	case _, ok := <-tk.C:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("ticker did not stop on context cancel")
	}
	tk.Stop()
}
