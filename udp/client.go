package udp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/internal/task"
)

// Client is a datagram client for one robot controller.
//
// It owns two UDP sockets, one per protocol division, each with its own
// receive loop and in-flight table. Commands may be sent concurrently from
// any number of goroutines; responses are matched to requests by request id.
type Client struct {
	cfg       *ClientConfig
	mgr       *task.Manager
	robot     *transport
	file      *transport
	connected atomic.Bool
}

// NewClient creates a client from the configuration. The context bounds the
// lifetime of the client's background tasks.
func NewClient(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrClientConfigNil
	}

	return &Client{cfg: cfg, mgr: task.NewManager(ctx, cfg.logger)}, nil
}

// Connect opens the robot and file sockets and starts their receive loops.
func (c *Client) Connect() error {
	if c.connected.Load() {
		return nil
	}

	robotConn, err := dialUDP(c.cfg.host, c.cfg.robotPort)
	if err != nil {
		return fmt.Errorf("dial robot socket: %w", err)
	}

	fileConn, err := dialUDP(c.cfg.host, c.cfg.filePort)
	if err != nil {
		_ = robotConn.Close()

		return fmt.Errorf("dial file socket: %w", err)
	}

	c.robot = newTransport(hse.DivisionRobot, robotConn, c.cfg.logger)
	c.file = newTransport(hse.DivisionFile, fileConn, c.cfg.logger)

	robotBuf := make([]byte, hse.MaxDatagramSize)
	fileBuf := make([]byte, hse.MaxDatagramSize)
	c.mgr.Start("udp-robot-receiver", func() bool { return c.robot.receiveLoop(robotBuf) })
	c.mgr.Start("udp-file-receiver", func() bool { return c.file.receiveLoop(fileBuf) })

	c.connected.Store(true)
	c.cfg.logger.Debug("client connected",
		"host", c.cfg.host, "robot_port", c.cfg.robotPort, "file_port", c.cfg.filePort)

	return nil
}

func dialUDP(host string, port int) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}

	return net.DialUDP("udp", nil, addr)
}

// Close stops the receive loops, closes both sockets and fails every
// in-flight request with ErrClosed. Close is idempotent.
func (c *Client) Close() error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}

	// Cancel first so waiters observe ErrClosed, then close the sockets to
	// unblock the receive loops.
	c.mgr.Stop()
	_ = c.robot.conn.Close()
	_ = c.file.conn.Close()
	c.mgr.Wait()

	c.cfg.logger.Debug("client closed", "host", c.cfg.host)

	return nil
}

// SendCommand sends one command and blocks until its response completes, the
// timeout expires, or the client is closed. A non-positive timeout selects
// the configured default.
//
// File-division commands transparently run the multi-block transfer; the
// timeout covers the whole transfer, not each block.
func (c *Client) SendCommand(cmd hse.Command, timeout time.Duration) (any, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = c.cfg.defaultTimeout
	}

	ctx := c.mgr.Context()

	if cmd.Division() == hse.DivisionFile {
		if w, ok := cmd.(hse.WriteFile); ok {
			return nil, c.file.sendBlocks(ctx, w, timeout)
		}

		return c.file.receiveBlocks(ctx, cmd, timeout)
	}

	return c.robot.roundTrip(ctx, cmd, timeout)
}

// SendCommands sends the commands in parallel and waits for all of them.
// On success the results are returned in the order the commands were given.
// If any command fails, the first error in command order is returned and the
// results are discarded; the remaining commands still run to completion.
func (c *Client) SendCommands(timeout time.Duration, cmds ...hse.Command) ([]any, error) {
	results := make([]any, len(cmds))
	errs := make([]error, len(cmds))

	var wg sync.WaitGroup
	for i, cmd := range cmds {
		i, cmd := i, cmd
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.SendCommand(cmd, timeout)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
