package udp

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-moto/hse"
)

func TestReadFileListSingleBlock(t *testing.T) {
	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		assert.Equal(t, uint8(2), f.division)
		assert.Equal(t, uint16(0x32), f.command)
		assert.Equal(t, "*.JBI", string(f.payload))

		respond(response{
			division:  2,
			requestID: f.requestID,
			block:     hse.TerminalBlock(0),
			payload:   []byte("A.JBI\r\nB.JBI\r\n"),
		})
	})

	client := dialLoopback(t, nil, file)

	names, err := client.ReadFileList("*.JBI", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.JBI", "B.JBI"}, names)
}

func TestReadFileMultiBlock(t *testing.T) {
	blocks := [][]byte{
		bytes.Repeat([]byte{'a'}, hse.MaxPayloadSize),
		bytes.Repeat([]byte{'b'}, hse.MaxPayloadSize),
		[]byte("tail"),
	}

	var mu sync.Mutex
	duplicated := false

	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		if f.ack == 0 {
			// Initial request carries the file name; answer with block 1.
			assert.Equal(t, uint16(0x16), f.command)
			assert.Equal(t, "TEST.JBI", string(f.payload))
			respond(response{division: 2, requestID: f.requestID, block: 1, payload: blocks[0]})

			return
		}

		// Block acknowledgement: send the next block. Resend block 1 once
		// after its ack to exercise duplicate handling.
		switch f.block {
		case 1:
			mu.Lock()
			resend := !duplicated
			duplicated = true
			mu.Unlock()

			if resend {
				respond(response{division: 2, requestID: f.requestID, block: 1, payload: blocks[0]})
			}
			respond(response{division: 2, requestID: f.requestID, block: 2, payload: blocks[1]})
		case 2:
			respond(response{division: 2, requestID: f.requestID, block: hse.TerminalBlock(3), payload: blocks[2]})
		}
	})

	client := dialLoopback(t, nil, file)

	data, err := client.ReadFile("TEST.JBI", 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, bytes.Join(blocks, nil), data)
}

func TestWriteFileMultiBlock(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, hse.MaxPayloadSize+100)

	var mu sync.Mutex
	var name string
	var received []byte
	sawTerminal := false

	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		mu.Lock()
		if f.block == 0 {
			assert.Equal(t, uint16(0x15), f.command)
			name = string(f.payload)
		} else {
			received = append(received, f.payload...)
			if f.block&0x8000_0000 != 0 {
				sawTerminal = true
			}
		}
		mu.Unlock()

		respond(response{division: 2, requestID: f.requestID, block: f.block})
	})

	client := dialLoopback(t, nil, file)

	require.NoError(t, client.WriteFile("TEST.JBI", payload, 5*time.Second))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "TEST.JBI", name)
	assert.Equal(t, payload, received)
	assert.True(t, sawTerminal, "last block must carry the terminal flag")
}

func TestWriteFileEmpty(t *testing.T) {
	var mu sync.Mutex
	blockCount := 0

	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		mu.Lock()
		if f.block != 0 {
			blockCount++
			assert.NotZero(t, f.block&0x8000_0000)
			assert.Empty(t, f.payload)
		}
		mu.Unlock()

		respond(response{division: 2, requestID: f.requestID, block: f.block})
	})

	client := dialLoopback(t, nil, file)

	require.NoError(t, client.WriteFile("EMPTY.JBI", nil, time.Second))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, blockCount)
}

func TestDeleteFile(t *testing.T) {
	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		assert.Equal(t, uint16(0x09), f.command)
		assert.Equal(t, "OLD.JBI", string(f.payload))
		respond(response{division: 2, requestID: f.requestID, block: hse.TerminalBlock(0)})
	})

	client := dialLoopback(t, nil, file)
	require.NoError(t, client.DeleteFile("OLD.JBI", time.Second))
}

func TestReadFileErrorStatus(t *testing.T) {
	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		respond(response{division: 2, requestID: f.requestID, status: 0x28, extra: 0x0001})
	})

	client := dialLoopback(t, nil, file)

	_, err := client.ReadFile("MISSING.JBI", time.Second)
	var cmdErr *hse.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, uint8(0x28), cmdErr.Status)
}

func TestFileTransferTimeoutIsCumulative(t *testing.T) {
	// The fake sends block 1 but never the rest; the overall deadline must
	// fire even though one block did arrive.
	file := newFakeController(t, func(f frame, respond func(response), raw func([]byte)) {
		if f.ack == 0 {
			respond(response{division: 2, requestID: f.requestID, block: 1, payload: []byte("partial")})
		}
	})

	client := dialLoopback(t, nil, file)

	start := time.Now()
	_, err := client.ReadFile("SLOW.JBI", 100*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}
