package rpcserver

import (
	"context"
	"encoding/binary"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/udp"
)

type regWrite struct {
	index uint16
	value uint8
}

// fakeRegisters simulates the controller's byte variable registers over a
// loopback UDP socket: plural reads, single reads and single writes.
type fakeRegisters struct {
	conn   *net.UDPConn
	port   int
	writes chan regWrite

	mu               sync.Mutex
	regs             map[uint16]uint8
	singleReadStatus uint8
	silent           bool
}

func newFakeRegisters(t *testing.T) *fakeRegisters {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	fake := &fakeRegisters{
		conn:   conn,
		port:   conn.LocalAddr().(*net.UDPAddr).Port,
		writes: make(chan regWrite, 16),
		regs:   make(map[uint16]uint8),
	}
	go fake.serve()

	return fake
}

func (f *fakeRegisters) set(index uint16, value uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[index] = value
}

func (f *fakeRegisters) get(index uint16) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.regs[index]
}

func (f *fakeRegisters) setSingleReadStatus(status uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleReadStatus = status
}

func (f *fakeRegisters) setSilent(silent bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silent = silent
}

func (f *fakeRegisters) respond(addr *net.UDPAddr, requestID uint8, status uint8, payload []byte) {
	buf := make([]byte, hse.HeaderSize+len(payload))
	copy(buf, "YERC")
	binary.LittleEndian.PutUint16(buf[4:], hse.HeaderSize)
	binary.LittleEndian.PutUint16(buf[6:], uint16(len(payload)))
	buf[8] = 0x03
	buf[9] = 1
	buf[10] = 1
	buf[11] = requestID
	binary.LittleEndian.PutUint32(buf[12:], 0x8000_0000)
	copy(buf[16:24], "99999999")
	buf[24] = 0x8E
	buf[25] = status
	copy(buf[hse.HeaderSize:], payload)

	_, _ = f.conn.WriteToUDP(buf, addr)
}

func (f *fakeRegisters) serve() {
	buf := make([]byte, hse.MaxDatagramSize)
	for {
		n, addr, err := f.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if n < hse.HeaderSize {
			continue
		}

		requestID := buf[11]
		command := binary.LittleEndian.Uint16(buf[24:26])
		instance := binary.LittleEndian.Uint16(buf[26:28])
		service := buf[29]
		payload := buf[hse.HeaderSize:n]

		f.mu.Lock()
		silent := f.silent
		singleReadStatus := f.singleReadStatus
		f.mu.Unlock()

		if silent || command != 0x7F {
			continue
		}

		switch service {
		case 0x33: // plural read
			count := binary.LittleEndian.Uint32(payload)
			values := make([]byte, count)
			f.mu.Lock()
			for i := range values {
				values[i] = f.regs[instance+uint16(i)]
			}
			f.mu.Unlock()
			f.respond(addr, requestID, 0, values)

		case 0x0E: // single read
			if singleReadStatus != 0 {
				f.respond(addr, requestID, singleReadStatus, nil)

				continue
			}
			f.respond(addr, requestID, 0, []byte{f.get(instance), 0, 0, 0})

		case 0x10: // single write
			f.set(instance, payload[0])
			f.respond(addr, requestID, 0, nil)
			f.writes <- regWrite{index: instance, value: payload[0]}
		}
	}
}

func dialFake(t *testing.T, fake *fakeRegisters) *udp.Client {
	t.Helper()

	cfg, err := udp.NewClientConfig("127.0.0.1",
		udp.WithRobotPort(fake.port),
		udp.WithFilePort(fake.port),
		udp.WithDefaultTimeout(time.Second),
	)
	require.NoError(t, err)

	client, err := udp.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, client.Connect())
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func awaitWrite(t *testing.T, fake *fakeRegisters) regWrite {
	t.Helper()

	select {
	case w := <-fake.writes:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a status register write")
		return regWrite{}
	}
}

func TestServiceHappyPath(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 10
	fake.set(20, 5) // precondition variable
	fake.set(base, uint8(StatusRequested))

	server, err := NewServer(testContext(t), client, base, 10*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0

	err = server.AddServiceWithPreconditions("reset",
		[]hse.Command{hse.ReadUint8Var{Index: 20}}, time.Second,
		func(results []any, resolve func(error)) {
			mu.Lock()
			calls++
			mu.Unlock()

			assert.Len(t, results, 1)
			assert.Equal(t, uint8(5), results[0])
			resolve(nil)
		})
	require.NoError(t, err)

	require.True(t, server.Start())
	defer server.Stop()

	write := awaitWrite(t, fake)
	assert.Equal(t, uint16(base), write.index)
	assert.Equal(t, uint8(StatusIdle), write.value)

	// The register now holds idle, so further polls must not re-dispatch.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestServiceErrorWritesErrorStatus(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))

	errs := make(chan error, 16)
	server, err := NewServer(testContext(t), client, base, 10*time.Millisecond,
		WithErrorSink(func(err error) { errs <- err }))
	require.NoError(t, err)

	require.NoError(t, server.AddService("motor", func(results []any, resolve func(error)) {
		resolve(assertableError{})
	}))

	require.True(t, server.Start())
	defer server.Stop()

	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusError), write.value)

	select {
	case err := <-errs:
		assert.True(t, strings.HasPrefix(err.Error(), "executing service motor"), err.Error())
	case <-time.After(time.Second):
		t.Fatal("no error delivered to the sink")
	}
}

type assertableError struct{}

func (assertableError) Error() string { return "motor fault" }

func TestBusyServiceIgnoresRepeatedRequests(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))

	server, err := NewServer(testContext(t), client, base, 10*time.Millisecond)
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})

	require.NoError(t, server.AddService("slow", func(results []any, resolve func(error)) {
		mu.Lock()
		calls++
		mu.Unlock()

		go func() {
			<-release
			resolve(nil)
		}()
	}))

	require.True(t, server.Start())
	defer server.Stop()

	// Several poll cycles pass while the register still reads requested.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls, "busy service must not be dispatched again")
	mu.Unlock()

	close(release)
	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusIdle), write.value)
}

func TestPreconditionFailureResolvesWithError(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))
	fake.setSingleReadStatus(0x1F)

	errs := make(chan error, 16)
	server, err := NewServer(testContext(t), client, base, 10*time.Millisecond,
		WithErrorSink(func(err error) { errs <- err }))
	require.NoError(t, err)

	handlerCalled := false
	require.NoError(t, server.AddServiceWithPreconditions("calibrate",
		[]hse.Command{hse.ReadUint8Var{Index: 20}}, time.Second,
		func(results []any, resolve func(error)) {
			handlerCalled = true
			resolve(nil)
		}))

	require.True(t, server.Start())
	defer server.Stop()

	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusError), write.value)
	assert.False(t, handlerCalled, "handler must not run when a precondition fails")

	select {
	case err := <-errs:
		assert.True(t, strings.HasPrefix(err.Error(), "executing service calibrate"), err.Error())
		var cmdErr *hse.CommandError
		assert.ErrorAs(t, err, &cmdErr)
	case <-time.After(time.Second):
		t.Fatal("no error delivered to the sink")
	}
}

func TestDisabledService(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))

	errs := make(chan error, 16)
	server, err := NewServer(testContext(t), client, base, 10*time.Millisecond,
		WithErrorSink(func(err error) { errs <- err }))
	require.NoError(t, err)

	require.NoError(t, server.AddService("legacy", DisabledService))

	require.True(t, server.Start())
	defer server.Stop()

	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusError), write.value)

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "service is disabled")
		assert.ErrorIs(t, err, hse.ErrInvalidArgument)
	case <-time.After(time.Second):
		t.Fatal("no error delivered to the sink")
	}
}

func TestPollSurvivesReadErrors(t *testing.T) {
	fake := newFakeRegisters(t)
	fake.setSilent(true)
	client := dialFake(t, fake)

	errs := make(chan error, 64)
	server, err := NewServer(testContext(t), client, 0, 10*time.Millisecond,
		WithErrorSink(func(err error) { errs <- err }))
	require.NoError(t, err)

	require.NoError(t, server.AddService("noop", func(results []any, resolve func(error)) {
		resolve(nil)
	}))

	require.True(t, server.Start())

	// Every poll times out; the loop must keep reporting and polling.
	var polled int
	deadline := time.After(3 * time.Second)
	for polled < 2 {
		select {
		case err := <-errs:
			assert.True(t, strings.HasPrefix(err.Error(), "reading commands status variables"), err.Error())
			polled++
		case <-deadline:
			t.Fatal("poll loop stopped reporting errors")
		}
	}

	require.True(t, server.Stop())
}

func TestStartStopStateChanges(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	server, err := NewServer(testContext(t), client, 0, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, server.AddService("noop", func(results []any, resolve func(error)) {
		resolve(nil)
	}))

	assert.False(t, server.Stop(), "stopping a stopped server changes nothing")
	assert.True(t, server.Start())
	assert.False(t, server.Start(), "starting a running server changes nothing")
	assert.True(t, server.Stop())

	// The server can be restarted after a stop.
	assert.True(t, server.Start())
	assert.True(t, server.Stop())
}

func TestAddServiceValidation(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	server, err := NewServer(testContext(t), client, 0, 10*time.Millisecond)
	require.NoError(t, err)

	noop := func(results []any, resolve func(error)) { resolve(nil) }

	require.Error(t, server.AddService("", noop))
	require.Error(t, server.AddService("x", nil))
	require.NoError(t, server.AddService("x", noop))

	require.True(t, server.Start())
	defer server.Stop()
	require.Error(t, server.AddService("y", noop), "services cannot be added while running")
}

func TestNewServerValidation(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	_, err := NewServer(testContext(t), nil, 0, time.Millisecond)
	require.Error(t, err)

	_, err = NewServer(testContext(t), client, 0, -time.Millisecond)
	require.Error(t, err)

	_, err = NewServer(testContext(t), client, 0, 0)
	require.NoError(t, err, "a zero delay selects immediate re-polling")

	_, err = NewServer(testContext(t), client, 0, time.Millisecond, WithErrorSink(nil))
	require.Error(t, err)
}

func TestZeroDelayRepollsImmediately(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))

	server, err := NewServer(testContext(t), client, base, 0)
	require.NoError(t, err)

	require.NoError(t, server.AddService("noop", func(results []any, resolve func(error)) {
		resolve(nil)
	}))

	require.True(t, server.Start())

	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusIdle), write.value)

	start := time.Now()
	require.True(t, server.Stop())
	assert.Less(t, time.Since(start), time.Second, "stop must not wait on a poll timer")
}

func TestFirstPollReadsBeforeDelayElapses(t *testing.T) {
	fake := newFakeRegisters(t)
	client := dialFake(t, fake)

	const base = 0
	fake.set(base, uint8(StatusRequested))

	// With an hour-long delay only an immediate first read can dispatch the
	// request within the test deadline.
	server, err := NewServer(testContext(t), client, base, time.Hour)
	require.NoError(t, err)

	require.NoError(t, server.AddService("noop", func(results []any, resolve func(error)) {
		resolve(nil)
	}))

	require.True(t, server.Start())
	defer server.Stop()

	write := awaitWrite(t, fake)
	assert.Equal(t, uint8(StatusIdle), write.value)
}

func TestRoundUpEven(t *testing.T) {
	assert.Equal(t, 0, roundUpEven(0))
	assert.Equal(t, 2, roundUpEven(1))
	assert.Equal(t, 2, roundUpEven(2))
	assert.Equal(t, 4, roundUpEven(3))
}
