package udp

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-moto/hse"
)

// frame is the parsed view of a request datagram received by the fake
// controller.
type frame struct {
	division  uint8
	ack       uint8
	requestID uint8
	block     uint32
	command   uint16
	instance  uint16
	attribute uint8
	service   uint8
	payload   []byte
}

func parseFrame(data []byte) frame {
	payload := make([]byte, len(data)-hse.HeaderSize)
	copy(payload, data[hse.HeaderSize:])

	return frame{
		division:  data[9],
		ack:       data[10],
		requestID: data[11],
		block:     binary.LittleEndian.Uint32(data[12:16]),
		command:   binary.LittleEndian.Uint16(data[24:26]),
		instance:  binary.LittleEndian.Uint16(data[26:28]),
		attribute: data[28],
		service:   data[29],
		payload:   payload,
	}
}

// response assembles a raw response datagram.
type response struct {
	division uint8
	requestID uint8
	block    uint32
	status   uint8
	extra    uint16
	payload  []byte
}

func (r response) encode() []byte {
	buf := make([]byte, hse.HeaderSize+len(r.payload))
	copy(buf, "YERC")
	binary.LittleEndian.PutUint16(buf[4:], hse.HeaderSize)
	binary.LittleEndian.PutUint16(buf[6:], uint16(len(r.payload)))
	buf[8] = 0x03
	buf[9] = r.division
	buf[10] = 1
	buf[11] = r.requestID
	binary.LittleEndian.PutUint32(buf[12:], r.block)
	copy(buf[16:24], "99999999")
	buf[24] = 0x8E
	buf[25] = r.status
	if r.extra != 0 {
		buf[26] = 2
		binary.LittleEndian.PutUint16(buf[28:], r.extra)
	}
	copy(buf[hse.HeaderSize:], r.payload)

	return buf
}

// fakeController answers datagrams on one loopback UDP socket. Handlers get
// a respond helper for well-formed frames and a raw writer for corrupt ones.
type fakeController struct {
	conn    *net.UDPConn
	port    int
	handler func(f frame, respond func(response), raw func([]byte))
}

func newFakeController(t *testing.T, handler func(f frame, respond func(response), raw func([]byte))) *fakeController {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	fc := &fakeController{
		conn:    conn,
		port:    conn.LocalAddr().(*net.UDPAddr).Port,
		handler: handler,
	}
	go fc.serve()

	return fc
}

func (fc *fakeController) serve() {
	buf := make([]byte, hse.MaxDatagramSize)
	for {
		n, addr, err := fc.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if n < hse.HeaderSize {
			continue
		}

		f := parseFrame(buf[:n])
		raw := func(data []byte) {
			_, _ = fc.conn.WriteToUDP(data, addr)
		}
		fc.handler(f, func(r response) { raw(r.encode()) }, raw)
	}
}

// silent ignores every request.
func silent(frame, func(response), func([]byte)) {}

// dialLoopback connects a client to the given fake controllers.
func dialLoopback(t *testing.T, robot, file *fakeController) *Client {
	t.Helper()

	if robot == nil {
		robot = newFakeController(t, silent)
	}
	if file == nil {
		file = newFakeController(t, silent)
	}

	cfg, err := NewClientConfig("127.0.0.1",
		WithRobotPort(robot.port),
		WithFilePort(file.port),
		WithDefaultTimeout(time.Second),
	)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, client.Connect())
	t.Cleanup(func() { _ = client.Close() })

	return client
}
