package udp

import (
	"context"
	"time"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/internal/pool"
)

// receiveBlocks runs a multi-block read: it sends the initial request, then
// collects and acknowledges blocks until the terminal flag appears, and hands
// the concatenated payload to the command decoder.
//
// Repeated or out-of-order blocks are dropped without acknowledgement, which
// makes the peer resend and keeps the transfer state unchanged.
func (t *transport) receiveBlocks(ctx context.Context, cmd hse.Command, timeout time.Duration) (any, error) {
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

	var assembled []byte
	var next uint32

	for {
		select {
		case <-ctx.Done():
			return nil, ErrClosed
		case <-timer.C:
			return nil, ErrTimeout
		case r := <-p.replies:
			if err := r.header.StatusError(); err != nil {
				return nil, err
			}

			index := r.header.BlockIndex()
			if next == 0 && index == 1 {
				// Controllers number the first data block 0 or 1.
				next = 1
			}
			if index != next {
				t.logger.Warn("dropping out-of-order block",
					"request_id", id, "block", index, "expected", next)

				continue
			}

			assembled = append(assembled, r.payload...)

			if r.header.LastBlock() {
				return cmd.DecodeResponse(r.header, assembled)
			}

			if err := t.write(hse.EncodeBlockAck(cmd, id, r.header.BlockNumber)); err != nil {
				return nil, err
			}
			next++
		}
	}
}

// sendBlocks runs a multi-block write: the initial request carries the file
// name, then the data streams out in payload-sized blocks, each waiting for
// the peer's acknowledgement before the next is sent. The terminal block
// carries the last-block flag.
func (t *transport) sendBlocks(ctx context.Context, cmd hse.WriteFile, timeout time.Duration) error {
	p := newPending()

	id, err := t.acquire(p)
	if err != nil {
		return err
	}
	defer t.release(id)

	data, err := hse.EncodeRequest(cmd, id)
	if err != nil {
		return err
	}

	if err := t.write(data); err != nil {
		return err
	}

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	awaitAck := func() error {
		for {
			select {
			case <-ctx.Done():
				return ErrClosed
			case <-timer.C:
				return ErrTimeout
			case r := <-p.replies:
				return r.header.StatusError()
			}
		}
	}

	// Acknowledgement of the initial request.
	if err := awaitAck(); err != nil {
		return err
	}

	rest := cmd.Data
	for block := uint32(1); ; block++ {
		n := min(len(rest), hse.MaxPayloadSize)
		chunk := rest[:n]
		rest = rest[n:]

		number := block
		if len(rest) == 0 {
			number = hse.TerminalBlock(number)
		}

		frame, err := hse.EncodeBlock(cmd, id, number, chunk)
		if err != nil {
			return err
		}

		if err := t.write(frame); err != nil {
			return err
		}

		if err := awaitAck(); err != nil {
			return err
		}

		if len(rest) == 0 {
			return nil
		}
	}
}
