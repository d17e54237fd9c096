package progress

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(ctx, Event{Stage: StageGenerate, File: "model.json"})
		}()
	}
	wg.Wait()
	r.Report(ctx, Event{Stage: StageDone, File: "model.json"})

	stages := r.Stages()
	require.Len(t, stages, 11)
	assert.Equal(t, StageDone, stages[10])
	assert.NoError(t, r.Close())
}

func TestEventPayload(t *testing.T) {
	ev := Event{Stage: StageFailed, File: "in.json", Message: "unsupported layer kind"}
	assert.Equal(t, map[string]any{
		"stage":   "failed",
		"file":    "in.json",
		"message": "unsupported layer kind",
	}, ev.Payload())
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Report(context.Background(), Event{Stage: StageLoad})
	assert.NoError(t, r.Close())
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := Dial(context.Background(), "localhost:3000", DialOptions{})
	assert.Error(t, err)

	_, err = Dial(context.Background(), "://bad", DialOptions{})
	assert.Error(t, err)
}

func TestDial_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Dial(ctx, "http://"+addr+"/socket.io/", DialOptions{Timeout: time.Second})
	assert.Error(t, err)
}
