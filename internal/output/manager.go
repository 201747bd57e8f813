package output

import (
	"errors"
	"fmt"
)

// Sink defines a destination for console records and lifecycle events.
type Sink interface {
	Write(v any) error
	Close() error
}

type namedSink struct {
	name   string
	sink   Sink
	failed bool
}

// Manager fans records out to named sinks. A sink whose Write fails is not
// written to again, so a broken file reports one error instead of one per
// line. Every sink is still closed.
type Manager struct {
	sinks []*namedSink
}

func NewManager() *Manager {
	return &Manager{}
}

// AddSink registers s under name. Names label errors and must be unique.
func (m *Manager) AddSink(name string, s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink %q must not be nil", name)
	}
	for _, ns := range m.sinks {
		if ns.name == name {
			return fmt.Errorf("sink %q already registered", name)
		}
	}
	m.sinks = append(m.sinks, &namedSink{name: name, sink: s})
	return nil
}

// Len reports how many sinks are registered.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sinks)
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, ns := range m.sinks {
		if ns.failed {
			continue
		}
		if err := ns.sink.Write(v); err != nil {
			ns.failed = true
			errs = append(errs, fmt.Errorf("write %s: %w", ns.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

// Close closes sinks in reverse registration order.
func (m *Manager) Close() error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for i := len(m.sinks) - 1; i >= 0; i-- {
		ns := m.sinks[i]
		if err := ns.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", ns.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
