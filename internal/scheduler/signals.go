package scheduler

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
)

// Sink receives events.
type Sink interface {
	Deliver(ev Event)
}

// Signals delivers process signals as scheduler events.
//
//	pkill -RTMIN+1 riverbar   # update the block with notification id 1
//	pkill -USR1 riverbar      # terminate
type Signals struct {
	table Table
	sink  Sink
	ready chan struct{}
}

func NewSignals(table Table, sink Sink) Signals {
	return Signals{table: table, sink: sink}
}

func (s Signals) String() string {
	return "scheduler.Signals"
}

func (s Signals) Serve(ctx context.Context) error {
	signals := s.table.Signals()

	c := make(chan os.Signal, len(signals))
	signal.Notify(c, signals...)
	defer signal.Stop(c)
	if s.ready != nil {
		close(s.ready)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-c:
			ev, ok := s.table.Resolve(sig)
			if !ok {
				slog.Debug("Unknown signal", "package", "scheduler", "signal", sig)
				continue
			}

			slog.Debug("Received signal", "package", "scheduler", "signal", sig, "event", ev.Kind)
			s.sink.Deliver(ev)
		}
	}
}
