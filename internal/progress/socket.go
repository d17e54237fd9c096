package progress

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultDialTimeout bounds the wait for the socket.io handshake.
const DefaultDialTimeout = 15 * time.Second

// DialOptions configures a SocketReporter connection.
type DialOptions struct {
	Namespace          string // defaults to "/"
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SocketReporter emits events to a socket.io server.
type SocketReporter struct {
	io     *socket.Socket
	logger *slog.Logger
}

// Dial connects to the socket.io endpoint at rawURL and waits for the
// handshake to finish.
func Dial(ctx context.Context, rawURL string, opts DialOptions) (*SocketReporter, error) {
	logger := ctxlog.FromContext(ctx).With("reporter", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL '%s' must be absolute", rawURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	sockOpts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sockOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Progress channel connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Streaming compile progress.", "sid", io.Id())
		return &SocketReporter{io: io, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Report emits ev as a compile-status event. Events are dropped with a
// warning while the connection is down.
func (r *SocketReporter) Report(ctx context.Context, ev Event) {
	if !r.io.Connected() {
		r.logger.Warn("Progress channel disconnected, dropping event.", "stage", ev.Stage, "file", ev.File)
		return
	}
	r.logger.Debug("Emitting event", "event", EventName, "stage", ev.Stage, "file", ev.File)
	if err := r.io.Emit(EventName, ev.Payload()); err != nil {
		r.logger.Warn("Failed to emit progress event.", "stage", ev.Stage, "error", err)
	}
}

// Close disconnects from the server.
func (r *SocketReporter) Close() error {
	r.logger.Debug("Closing progress channel", "sid", r.io.Id())
	r.io.Disconnect()
	return nil
}
