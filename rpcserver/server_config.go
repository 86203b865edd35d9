package rpcserver

import (
	"errors"

	"github.com/arloliu/go-moto/logger"
)

// ServerOption represents a functional option for configuring a Server.
type ServerOption interface {
	apply(*Server) error
}

type serverOptFunc func(*Server) error

func (f serverOptFunc) apply(s *Server) error { return f(s) }

// WithErrorSink sets the callback that receives polling and service
// execution errors.
//
// By default errors are written to the server's logger.
func WithErrorSink(sink func(error)) ServerOption {
	return serverOptFunc(func(s *Server) error {
		if sink == nil {
			return errors.New("error sink is nil")
		}
		s.onError = sink

		return nil
	})
}

// WithLogger sets the logger for the server.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ServerOption {
	return serverOptFunc(func(s *Server) error {
		s.logger = l

		return nil
	})
}
