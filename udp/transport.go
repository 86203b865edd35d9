package udp

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/internal/pool"
	"github.com/arloliu/go-moto/logger"
)

// replyQueueSize bounds the per-request reply channel. Multi-block reads are
// paced by block acknowledgements, so more than a couple of frames are never
// in flight for one request id.
const replyQueueSize = 8

// reply carries one decoded response frame from the receive loop to the
// goroutine waiting on the request id.
type reply struct {
	header  *hse.ResponseHeader
	payload []byte
}

// pending is the in-flight table entry for one outstanding request id.
type pending struct {
	replies chan reply
}

func newPending() *pending {
	return &pending{replies: make(chan reply, replyQueueSize)}
}

// transport owns one UDP socket for one division and routes response frames
// to the pending requests by request id.
type transport struct {
	division hse.Division
	conn     *net.UDPConn
	inflight *xsync.MapOf[uint8, *pending]
	nextID   atomic.Uint32
	logger   logger.Logger
}

func newTransport(division hse.Division, conn *net.UDPConn, l logger.Logger) *transport {
	return &transport{
		division: division,
		conn:     conn,
		inflight: xsync.NewMapOf[uint8, *pending](),
		logger:   l,
	}
}

// acquire registers p under a fresh request id. Ids wrap at 256 and skip the
// ones still outstanding; when all 256 are in flight it fails with
// ErrTooManyInFlight.
func (t *transport) acquire(p *pending) (uint8, error) {
	for i := 0; i < 256; i++ {
		id := uint8(t.nextID.Add(1))
		if _, loaded := t.inflight.LoadOrStore(id, p); !loaded {
			return id, nil
		}
	}

	return 0, ErrTooManyInFlight
}

// release removes the request id from the in-flight table, making it
// available for reuse.
func (t *transport) release(id uint8) {
	t.inflight.Delete(id)
}

func (t *transport) write(data []byte) error {
	if _, err := t.conn.Write(data); err != nil {
		return err
	}

	return nil
}

// receiveLoop reads one datagram and routes it. It is run as a task; the
// return value reports whether the loop should keep running.
func (t *transport) receiveLoop(buf []byte) bool {
	n, err := t.conn.Read(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return false
		}
		// Connected UDP sockets surface ICMP errors as transient read
		// failures; keep the loop alive.
		t.logger.Warn("udp read failed", "division", t.division, "error", err)

		return true
	}

	header, payload, err := t.decode(buf[:n])
	if err != nil {
		t.logger.Warn("dropping malformed response", "division", t.division, "error", err)

		return true
	}

	p, ok := t.inflight.Load(header.RequestID)
	if !ok {
		t.logger.Warn("dropping response for unknown request id",
			"division", t.division, "request_id", header.RequestID, "error", hse.ErrUnknownRequest)

		return true
	}

	select {
	case p.replies <- reply{header: header, payload: payload}:
	default:
		t.logger.Warn("dropping response, reply queue is full",
			"division", t.division, "request_id", header.RequestID)
	}

	return true
}

// decode parses the datagram and detaches the payload from the shared
// receive buffer.
func (t *transport) decode(data []byte) (*hse.ResponseHeader, []byte, error) {
	header, payload, err := hse.DecodeResponseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	detached := make([]byte, len(payload))
	copy(detached, payload)

	return header, detached, nil
}

// roundTrip performs one single-frame request/response exchange.
func (t *transport) roundTrip(ctx context.Context, cmd hse.Command, timeout time.Duration) (any, error) {
	p := newPending()

	id, err := t.acquire(p)
	if err != nil {
		return nil, err
	}
	defer t.release(id)

	data, err := hse.EncodeRequest(cmd, id)
	if err != nil {
		return nil, err
	}

	if err := t.write(data); err != nil {
		return nil, err
	}

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return nil, ErrClosed
	case <-timer.C:
		return nil, ErrTimeout
	case r := <-p.replies:
		if err := r.header.StatusError(); err != nil {
			return nil, err
		}

		return cmd.DecodeResponse(r.header, r.payload)
	}
}
