package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-moto/hse"
	"github.com/arloliu/go-moto/internal/pool"
	"github.com/arloliu/go-moto/internal/task"
	"github.com/arloliu/go-moto/logger"
	"github.com/arloliu/go-moto/udp"
)

// Status is the value of a service's status register.
type Status uint8

const (
	// StatusIdle means the service is available and the last run succeeded.
	StatusIdle Status = 0
	// StatusRequested is written by the peer to request the service.
	StatusRequested Status = 1
	// StatusError means the last run of the service failed.
	StatusError Status = 2
)

// registerTimeout bounds each individual register read and write issued by
// the poll loop.
const registerTimeout = 100 * time.Millisecond

// Handler executes one service request.
//
// results holds the decoded responses of the service's precondition
// commands, in registration order. The handler must call resolve exactly
// once, with nil on success; it may do so asynchronously. Extra calls to
// resolve are ignored.
type Handler func(results []any, resolve func(error))

// DisabledService is a placeholder handler that fails every request. It
// keeps a service's register assignment stable while the service is turned
// off.
func DisabledService(results []any, resolve func(error)) {
	resolve(fmt.Errorf("%w: service is disabled", hse.ErrInvalidArgument))
}

type service struct {
	name     string
	register uint16
	commands []hse.Command
	timeout  time.Duration
	handler  Handler
	busy     atomic.Bool
}

// Server polls a block of status registers and dispatches service requests.
type Server struct {
	client       *udp.Client
	baseRegister uint16
	delay        time.Duration
	onError      func(error)
	logger       logger.Logger
	mgr          *task.Manager
	services     []*service
	running      atomic.Bool
}

// NewServer creates a server polling the registers starting at baseRegister
// every delay; a zero delay re-polls immediately. Errors from polling and
// from service execution are delivered to the options' error sink; by
// default they are logged.
func NewServer(ctx context.Context, client *udp.Client, baseRegister uint16, delay time.Duration, opts ...ServerOption) (*Server, error) {
	if client == nil {
		return nil, errors.New("client is nil")
	}
	if delay < 0 {
		return nil, errors.New("poll delay cannot be negative")
	}

	srv := &Server{
		client:       client,
		baseRegister: baseRegister,
		delay:        delay,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(srv); err != nil {
			return nil, err
		}
	}

	if srv.onError == nil {
		srv.onError = func(err error) { srv.logger.Error("rpc server error", "error", err) }
	}

	srv.mgr = task.NewManager(ctx, srv.logger)

	return srv, nil
}

// AddService registers a service with no precondition commands. The service
// is assigned the next register after the previously added one. Services
// cannot be added while the server is running.
func (s *Server) AddService(name string, handler Handler) error {
	return s.AddServiceWithPreconditions(name, nil, 0, handler)
}

// AddServiceWithPreconditions registers a service whose precondition
// commands run before the handler, with their responses passed to it. The
// timeout bounds each precondition command; a non-positive timeout selects
// the client default.
func (s *Server) AddServiceWithPreconditions(name string, commands []hse.Command, timeout time.Duration, handler Handler) error {
	if name == "" {
		return errors.New("service name is empty")
	}
	if handler == nil {
		return errors.New("service handler is nil")
	}
	if s.running.Load() {
		return errors.New("cannot add a service while the server is running")
	}

	s.services = append(s.services, &service{
		name:     name,
		register: s.baseRegister + uint16(len(s.services)),
		commands: commands,
		timeout:  timeout,
		handler:  handler,
	})

	return nil
}

// Start begins polling. It reports whether the server state changed: false
// means the server was already running.
func (s *Server) Start() bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}

	s.mgr.Start("rpc-poll", s.poll)
	s.logger.Debug("rpc server started",
		"base_register", s.baseRegister, "services", len(s.services), "delay", s.delay)

	return true
}

// Stop halts polling and waits for the poll loop to exit. Handlers that are
// already running are not interrupted. It reports whether the server state
// changed: false means the server was not running.
func (s *Server) Stop() bool {
	if !s.running.CompareAndSwap(true, false) {
		return false
	}

	s.mgr.Stop()
	s.mgr.Wait()
	s.logger.Debug("rpc server stopped")

	return true
}

// poll reads the status register block, dispatches every service whose
// register holds the requested value, then sleeps for the configured delay.
// The first read happens right after Start, not one delay later.
func (s *Server) poll() bool {
	if len(s.services) > 0 {
		// The controller rejects odd counts for plural byte reads.
		count := roundUpEven(len(s.services))
		statuses, err := s.client.ReadUint8Vars(s.baseRegister, uint16(count), registerTimeout)
		if err != nil {
			s.onError(fmt.Errorf("reading commands status variables: %w", err))
		} else {
			for i, svc := range s.services {
				if Status(statuses[i]) == StatusRequested {
					s.execute(svc)
				}
			}
		}
	}

	// A zero delay re-polls immediately; the task loop still observes the
	// manager context between iterations.
	if s.delay == 0 {
		return true
	}

	timer := pool.GetTimer(s.delay)
	defer pool.PutTimer(timer)

	select {
	case <-s.mgr.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

// execute starts one run of svc unless it is already busy. The busy flag
// stays set until the outcome has been written back to the register, so a
// repeated request cannot overlap the previous run.
func (s *Server) execute(svc *service) {
	if !svc.busy.CompareAndSwap(false, true) {
		return
	}

	resolve := s.resolver(svc)

	go func() {
		var results []any
		if len(svc.commands) > 0 {
			var err error
			results, err = s.client.SendCommands(svc.timeout, svc.commands...)
			if err != nil {
				resolve(err)

				return
			}
		}

		svc.handler(results, resolve)
	}()
}

// resolver returns the single-shot continuation that finishes one run of
// svc: report the error, write the outcome into the status register, then
// clear the busy flag.
func (s *Server) resolver(svc *service) func(error) {
	var once sync.Once

	return func(err error) {
		once.Do(func() {
			status := StatusIdle
			if err != nil {
				s.onError(fmt.Errorf("executing service %s: %w", svc.name, err))
				status = StatusError
			}

			if werr := s.client.WriteUint8Var(svc.register, uint8(status), registerTimeout); werr != nil {
				s.onError(fmt.Errorf("writing status for service %s: %w", svc.name, werr))
			}

			// The busy flag is cleared last, after the register holds the
			// outcome of this run.
			svc.busy.Store(false)
		})
	}
}

func roundUpEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}

	return n
}
