package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/logger"
)

// Variable type codes used by the text protocol's variable commands.
const (
	varTypeUint8 = 0
	varTypeInt16 = 1
	varTypeInt32 = 2
)

// ErrNotConnected indicates that a command was attempted before Connect.
var ErrNotConnected = errors.New("client is not connected")

// Client is a host control text protocol client. All commands are safe for
// concurrent use; they are serialized on the single connection.
type Client struct {
	host    string
	port    int
	timeout time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a text protocol client for the controller at host.
// Port 80 is the controller default.
func NewClient(host string, port int, timeout time.Duration, l logger.Logger) *Client {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Client{host: host, port: port, timeout: timeout, logger: l}
}

// Connect dials the controller and starts the session. keepAlive is the
// session keep-alive time in seconds; a non-positive value asks the
// controller to keep the session open indefinitely.
func (c *Client) Connect(keepAlive int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(c.host, strconv.Itoa(c.port)), c.timeout)
	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)

	request := "CONNECT Robot_access"
	if keepAlive > 0 {
		request += " Keep-Alive:" + strconv.Itoa(keepAlive)
	}

	if _, err := c.exchange(request + "\r\n"); err != nil {
		_ = conn.Close()
		c.conn = nil
		c.reader = nil

		return fmt.Errorf("start session: %w", err)
	}

	c.logger.Debug("text session started", "host", c.host, "port", c.port)

	return nil
}

// Close closes the connection. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.reader = nil

	return err
}

// Command runs one host control command with the given argument line and
// returns the data portion of the reply.
func (c *Client) Command(name, args string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return "", ErrNotConnected
	}

	// The argument line is sent as a separate data message after the
	// controller confirms the command.
	data := ""
	if args != "" {
		data = args + "\r"
	}

	request := fmt.Sprintf("HOSTCTRL_REQUEST %s %d\r\n", name, len(data))
	confirm, err := c.exchange(request)
	if err != nil {
		return "", fmt.Errorf("command %s: %w", name, err)
	}
	if confirm != name {
		return "", fmt.Errorf("%w: command confirmation %q does not match command %q",
			hse.ErrMalformedResponse, confirm, name)
	}

	if data == "" {
		return c.readData()
	}

	if err := c.write(data); err != nil {
		return "", err
	}

	return c.readData()
}

// ReadUint8Var reads byte variable index.
func (c *Client) ReadUint8Var(index uint16) (uint8, error) {
	reply, err := c.Command("SAVEV", fmt.Sprintf("%d, %d", varTypeUint8, index))
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseUint(strings.TrimSpace(reply), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: byte variable reply %q is not an integer in [0, 255]",
			hse.ErrMalformedResponse, reply)
	}

	return uint8(value), nil
}

// WriteUint8Var writes byte variable index.
func (c *Client) WriteUint8Var(index uint16, value uint8) error {
	reply, err := c.Command("LOADV", fmt.Sprintf("%d, %d, %d", varTypeUint8, index, value))
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply) != "0000" {
		return fmt.Errorf("%w: write reply %q does not report success", hse.ErrMalformedResponse, reply)
	}

	return nil
}

// exchange writes one request line and reads the OK/NG status reply.
// The payload after the OK marker is returned with whitespace trimmed.
func (c *Client) exchange(request string) (string, error) {
	if err := c.write(request); err != nil {
		return "", err
	}

	line, err := c.readLine()
	if err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(line, "OK:"):
		return strings.TrimSpace(line[len("OK:"):]), nil
	case strings.HasPrefix(line, "NG:"):
		return "", fmt.Errorf("controller refused request: %s", strings.TrimSpace(line[len("NG:"):]))
	default:
		return "", fmt.Errorf("%w: reply %q carries neither OK nor NG marker", hse.ErrMalformedResponse, line)
	}
}

// readData reads one data reply, terminated by a bare carriage return.
func (c *Client) readData() (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}

	data, err := c.reader.ReadString('\r')
	if err != nil {
		return "", err
	}

	// Consume the optional line feed after the carriage return.
	if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
		_, _ = c.reader.Discard(1)
	}

	return strings.TrimRight(data, "\r"), nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.readData()
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) write(data string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}

	_, err := c.conn.Write([]byte(data))

	return err
}
