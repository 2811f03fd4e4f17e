// Package wizard implements the linear multi-step form state machine shared
// by the onboarding and booking flows: one current step, per-step validation
// gates, always-allowed backward navigation and a fallible terminal submit.
package wizard

import (
	"context"
	"errors"
	"sync"
)

// Values is the field data accumulated across steps. Fields set in earlier
// steps are never wiped by navigation; only Reset clears them.
type Values map[string]any

// FieldError is one inline validation failure, keyed by the offending field.
type FieldError struct {
	Field   string
	Message string
}

// Validator checks a step's fields synchronously and returns all failures in
// display order.
type Validator func(v Values) []FieldError

// Gate is a server-side check that must succeed before the wizard advances
// past a step (e.g. identity verification). The returned error's text is
// surfaced verbatim as the step's error.
type Gate func(ctx context.Context, v Values) error

// Step is one page of a wizard.
type Step struct {
	Name     string
	Title    string
	Fields   []Field
	Validate Validator
	Gate     Gate
}

// Field describes an input for the rendering layer.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Secret      bool
	Multiline   bool
}

// SubmitFunc performs the final submission from the last step.
type SubmitFunc func(ctx context.Context, v Values) error

// Machine sequences steps 1..N plus a terminal completed state. All methods
// are safe for concurrent use; while an async gate or submission is in
// flight, duplicate Next/Submit calls are ignored.
type Machine struct {
	mu         sync.Mutex
	steps      []Step
	submit     SubmitFunc
	current    int // 1-indexed
	completed  bool
	submitting bool
	values     Values
	errs       []FieldError
}

// New creates a machine positioned at step 1.
func New(steps []Step, submit SubmitFunc) (*Machine, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard needs at least one step")
	}
	return &Machine{
		steps:   steps,
		submit:  submit,
		current: 1,
		values:  Values{},
	}, nil
}

// Current returns the 1-indexed current step number.
func (m *Machine) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Step returns the current step definition.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps[m.current-1]
}

func (m *Machine) TotalSteps() int {
	return len(m.steps)
}

func (m *Machine) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}

func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// Errors returns the current step's validation or gate errors.
func (m *Machine) Errors() []FieldError {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FieldError, len(m.errs))
	copy(out, m.errs)
	return out
}

// Set records one field value on the current step.
func (m *Machine) Set(field string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[field] = value
}

// Value reads one accumulated field value.
func (m *Machine) Value(field string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[field]
	return v, ok
}

// Values returns a copy of all accumulated field data.
func (m *Machine) Values() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cloneValuesLocked()
}

func (m *Machine) cloneValuesLocked() Values {
	out := make(Values, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Next tries to advance past the current step. It reports whether the wizard
// advanced; a validation failure leaves Errors non-empty and returns
// (false, nil), a failed gate additionally returns the gate's error. Calls
// made while an async gate is running are ignored. Next never advances past
// the final step; that transition belongs to Submit.
func (m *Machine) Next(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.submitting || m.completed || m.current == len(m.steps) {
		m.mu.Unlock()
		return false, nil
	}
	step := m.steps[m.current-1]
	m.errs = nil
	if step.Validate != nil {
		if errs := step.Validate(m.cloneValuesLocked()); len(errs) > 0 {
			m.errs = errs
			m.mu.Unlock()
			return false, nil
		}
	}
	if step.Gate == nil {
		m.current++
		m.mu.Unlock()
		return true, nil
	}

	m.submitting = true
	values := m.cloneValuesLocked()
	m.mu.Unlock()

	err := step.Gate(ctx, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.errs = []FieldError{{Field: step.Name, Message: err.Error()}}
		return false, err
	}
	m.current++
	return true, nil
}

// Previous steps back one step. It is always allowed while not submitting,
// never validates, and clears validation errors even when already at step 1.
// The completed state is terminal; Previous does nothing there.
func (m *Machine) Previous() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting || m.completed {
		return false
	}
	m.errs = nil
	if m.current == 1 {
		return false
	}
	m.current--
	return true
}

// Submit finishes the wizard from the final step: every step's validator runs
// as a final guard, then the submit action. Failure keeps the wizard on the
// final step with the error surfaced; success is irreversible.
func (m *Machine) Submit(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.submitting || m.completed || m.current != len(m.steps) {
		m.mu.Unlock()
		return false, nil
	}
	m.errs = nil
	values := m.cloneValuesLocked()
	for _, step := range m.steps {
		if step.Validate == nil {
			continue
		}
		m.errs = append(m.errs, step.Validate(values)...)
	}
	if len(m.errs) > 0 {
		m.mu.Unlock()
		return false, nil
	}
	if m.submit == nil {
		m.completed = true
		m.mu.Unlock()
		return true, nil
	}

	m.submitting = true
	m.mu.Unlock()

	err := m.submit(ctx, values)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.errs = []FieldError{{Field: m.steps[m.current-1].Name, Message: err.Error()}}
		return false, err
	}
	m.completed = true
	return true, nil
}

// Reset returns the machine to step 1 with empty values. Ignored while an
// async action is in flight.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return
	}
	m.current = 1
	m.completed = false
	m.values = Values{}
	m.errs = nil
}
