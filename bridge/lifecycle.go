package bridge

import (
	"sync"

	"github.com/modumentor/bridge/errors"
)

// Manager owns the process's single agent instance. Construction happens
// lazily on first need and at most once: a failed construction is cached
// and reported to every later caller without a retry. A fresh process gets
// a fresh Manager, so the next invocation tries again.
type Manager struct {
	build func() (Agent, error)

	once  sync.Once
	agent Agent
	err   error
}

// NewManager creates a lifecycle manager around a constructor. The
// constructor is not called until the first Ensure.
func NewManager(build func() (Agent, error)) *Manager {
	return &Manager{build: build}
}

// Ensure returns the process agent, constructing it on first call. A panic
// inside the constructor is converted to a cached error so later commands
// in the process see the same failure instead of a crash.
func (m *Manager) Ensure() (Agent, error) {
	m.once.Do(func() {
		defer func() {
			if p := recover(); p != nil {
				m.agent = nil
				m.err = errors.New("agent construction panicked: %v", p)
			}
		}()
		m.agent, m.err = m.build()
	})
	return m.agent, m.err
}
