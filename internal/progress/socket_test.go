package progress

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sio "github.com/zishang520/socket.io/v2/socket"
)

// newStatusServer starts a socket.io server that forwards every
// compile-status payload it receives to the returned channel. ready fires
// once a client's listener is in place.
func newStatusServer(t *testing.T) (url string, ready <-chan struct{}, events <-chan map[string]any) {
	t.Helper()

	received := make(chan map[string]any, 8)
	listening := make(chan struct{}, 1)
	io := sio.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*sio.Socket)
		client.On(EventName, func(args ...any) {
			if len(args) == 0 {
				return
			}
			if payload, ok := args[0].(map[string]any); ok {
				received <- payload
			}
		})
		select {
		case listening <- struct{}{}:
		default:
		}
	})

	ts := httptest.NewServer(io.ServeHandler(nil))
	t.Cleanup(func() {
		io.Close(nil)
		ts.Close()
	})
	return ts.URL + "/socket.io/", listening, received
}

func TestSocketReporter_DeliversEvents(t *testing.T) {
	url, ready, received := newStatusServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := Dial(ctx, url, DialOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	select {
	case <-ready:
	case <-ctx.Done():
		t.Fatal("server never saw the connection")
	}

	r.Report(ctx, Event{Stage: StageGenerate, File: "model.json"})
	r.Report(ctx, Event{Stage: StageFailed, File: "model.json", Message: "unsupported layer kind"})

	var got []map[string]any
	for len(got) < 2 {
		select {
		case payload := <-received:
			got = append(got, payload)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for compile-status events, got %d", len(got))
		}
	}
	assert.Equal(t, map[string]any{"stage": "generate", "file": "model.json", "message": ""}, got[0])
	assert.Equal(t, map[string]any{"stage": "failed", "file": "model.json", "message": "unsupported layer kind"}, got[1])

	require.NoError(t, r.Close())
	assert.False(t, r.io.Connected())

	// After Close the reporter drops events instead of failing.
	r.Report(ctx, Event{Stage: StageDone, File: "model.json"})
	select {
	case payload := <-received:
		t.Fatalf("unexpected event after close: %v", payload)
	case <-time.After(200 * time.Millisecond):
	}
}
