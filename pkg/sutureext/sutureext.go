// Package sutureext has helpers for running services under suture.
package sutureext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/thejerf/suture/v4"
)

// New creates a supervisor that logs its events.
func New(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: EventHook(),
	})
}

func EventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			slog.Warn("Service did not stop in time", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			slog.Error("Service panicked", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			slog.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			if err, _ := e.Err.(error); errors.Is(err, suture.ErrTerminateSupervisorTree) {
				slog.Debug("Service terminated the tree", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err)
				return
			}
			slog.Error("Service failed", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err, "restarting", e.Restarting)
		case suture.EventBackoff:
			slog.Warn("Too many service failures, backing off", "supervisor", e.SupervisorName)
		case suture.EventResume:
			slog.Info("Resuming after backoff", "supervisor", e.SupervisorName)
		default:
			slog.Warn("Unknown supervisor event", "type", int(e.Type()), "event", e.String())
		}
	}
}

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError prevents the error from being interpreted as a context error unless it
// really is a context error because suture kills the service when it sees a context error.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))

	return errors.Join(errs...)
}

// Fatal marks err as ending the whole supervisor tree.
func Fatal(err error) error {
	if err == nil || errors.Is(err, suture.ErrTerminateSupervisorTree) {
		return err
	}
	return errors.Join(err, suture.ErrTerminateSupervisorTree)
}

// FatalService ends the supervisor tree when the wrapped service stops for any reason
// other than its context being done. A panic also ends the tree instead of restarting.
// The first cause is kept in Cause.
type FatalService struct {
	Service
	cause *Cause
}

func NewFatalService(service Service, cause *Cause) FatalService {
	return FatalService{Service: service, cause: cause}
}

// ErrPanic wraps the value of a recovered panic.
var ErrPanic = errors.New("panic")

func (s FatalService) Serve(ctx context.Context) (err error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}

		slog.Error("Service panicked", "service", s.Service.String(), "panic", v)
		slog.Debug(string(debug.Stack()))

		if perr, ok := v.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, perr)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, v)
		}
		s.cause.Set(s.Service.String(), err)
		err = Fatal(err)
	}()

	err = s.Service.Serve(ctx)
	if ctx.Err() != nil {
		return err
	}
	if err == nil {
		err = errors.New("stopped")
	}
	s.cause.Set(s.Service.String(), err)
	return Fatal(err)
}

type ServiceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewServiceFunc(name string, fn func(ctx context.Context) error) ServiceFunc {
	return ServiceFunc{
		name: name,
		fn:   fn,
	}
}

func (s ServiceFunc) String() string {
	return s.name
}

func (s ServiceFunc) Serve(ctx context.Context) error {
	return s.fn(ctx)
}
