package udp

import (
	"errors"
	"time"

	"github.com/arloliu/go-moto/logger"
)

// ClientConfig represents the configuration parameters for an HSE client.
type ClientConfig struct {
	// host specifies the host of the robot controller.
	host string

	// robotPort specifies the UDP port for robot command frames.
	// Defaults to 10040.
	robotPort int

	// filePort specifies the UDP port for file transfer frames.
	// Defaults to 10041.
	filePort int

	// defaultTimeout is the deadline applied when a command is sent with a
	// non-positive timeout. Defaults to 500 milliseconds.
	defaultTimeout time.Duration

	// logger provides a logger instance for transport events and errors.
	logger logger.Logger
}

// NewClientConfig creates a client configuration for the controller at host
// with default values, then applies the provided options.
func NewClientConfig(host string, opts ...ClientOption) (*ClientConfig, error) {
	cfg := &ClientConfig{
		host:           host,
		robotPort:      10040,
		filePort:       10041,
		defaultTimeout: 500 * time.Millisecond,
		logger:         logger.GetLogger(),
	}

	if host == "" {
		return cfg, errors.New("invalid host")
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// ClientOption represents a functional option for configuring a ClientConfig.
type ClientOption interface {
	apply(*ClientConfig) error
}

type clientOptFunc func(*ClientConfig) error

func (f clientOptFunc) apply(cfg *ClientConfig) error { return f(cfg) }

// WithRobotPort sets the UDP port for robot command frames.
// An error is returned if the port is out of the valid range (1-65535).
//
// The default value is 10040.
func WithRobotPort(port int) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}
		if port < 1 || port > 65535 {
			return errors.New("robot port is out of range [1, 65535]")
		}
		cfg.robotPort = port

		return nil
	})
}

// WithFilePort sets the UDP port for file transfer frames.
// An error is returned if the port is out of the valid range (1-65535).
//
// The default value is 10041.
func WithFilePort(port int) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}
		if port < 1 || port > 65535 {
			return errors.New("file port is out of range [1, 65535]")
		}
		cfg.filePort = port

		return nil
	})
}

// WithDefaultTimeout sets the deadline applied when a command is sent with a
// non-positive timeout.
//
// The default value is 500 milliseconds.
func WithDefaultTimeout(timeout time.Duration) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}
		if timeout <= 0 {
			return errors.New("default timeout must be positive")
		}
		cfg.defaultTimeout = timeout

		return nil
	})
}

// WithLogger sets the logger for the client.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(cfg *ClientConfig) error {
		if cfg == nil {
			return ErrClientConfigNil
		}
		cfg.logger = l

		return nil
	})
}
