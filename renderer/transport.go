package renderer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/purc-lang/purc/errkind"
)

// Transport carries a single Message to the renderer and returns its
// Response. Renderer transport is an external collaborator per
// spec.md §1; this module ships only StdioTransport as a minimal default.
type Transport interface {
	Call(ctx context.Context, msg *Message) (*Response, error)
}

// Bridge wraps a Transport with the request-id bookkeeping and timeout
// handling spec.md §6 describes: "blocks with a configurable timeout for
// the response".
type Bridge struct {
	transport Transport
	timeout   time.Duration
	nextID    atomic.Uint64
}

func NewBridge(transport Transport, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bridge{transport: transport, timeout: timeout}
}

// Call assigns a request id, invokes the transport under a timeout, and
// translates a non-200 retCode into a SERVER_REFUSED error.
func (b *Bridge) Call(ctx context.Context, target TargetKind, targetValue string, op Operation, data any) (*Response, *errkind.Error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errkind.Wrap(errkind.InvalidValue, err, "marshal renderer request data")
	}
	id := b.nextID.Add(1)
	msg := &Message{
		Target:      target,
		TargetValue: targetValue,
		Operation:   op,
		RequestID:   fmt.Sprintf("%d", id),
		Data:        payload,
	}
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	resp, callErr := b.transport.Call(callCtx, msg)
	if callErr != nil {
		return nil, errkind.Wrap(errkind.ServerRefused, callErr, "renderer call %s failed", op)
	}
	if !resp.OK() {
		return resp, errkind.New(errkind.ServerRefused, "renderer refused %s (retCode=%d)", op, resp.RetCode)
	}
	return resp, nil
}

// StdioTransport frames newline-delimited JSON messages over any
// io.ReadWriter — a subprocess's stdio pipes, a net.Conn, or (in tests) an
// in-memory pipe. One goroutine reads responses and dispatches them to
// the waiting caller by request id; calls are otherwise synchronous from
// the caller's point of view, matching spec.md §6.
type StdioTransport struct {
	w       io.Writer
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *Response
}

func NewStdioTransport(rw io.ReadWriter) *StdioTransport {
	t := &StdioTransport{w: rw, pending: map[string]chan *Response{}}
	go t.readLoop(rw)
	return t
}

func (t *StdioTransport) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		t.mu.Lock()
		ch, ok := t.pending[resp.RequestID]
		if ok {
			delete(t.pending, resp.RequestID)
		}
		t.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (t *StdioTransport) Call(ctx context.Context, msg *Message) (*Response, error) {
	ch := make(chan *Response, 1)
	t.mu.Lock()
	t.pending[msg.RequestID] = ch
	t.mu.Unlock()

	line, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	line = append(line, '\n')

	t.writeMu.Lock()
	_, werr := t.w.Write(line)
	t.writeMu.Unlock()
	if werr != nil {
		t.mu.Lock()
		delete(t.pending, msg.RequestID)
		t.mu.Unlock()
		return nil, werr
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, msg.RequestID)
		t.mu.Unlock()
		return nil, ctx.Err()
	}
}
