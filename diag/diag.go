// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package diag implements the tracker's diagnostic sink: structured
// messages keyed by severity, object handle and code, dispatched to a
// log file and/or to callbacks registered by the application.
package diag

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Severity classifies a diagnostic message.
type Severity int

const (
	// Info is an informational diagnostic (e.g. a sparse rebind).
	Info Severity = iota
	// Warning is a diagnostic about a usage pattern that is allowed
	// but likely unintended.
	Warning
	// Error is a diagnostic about a violated invariant or contract.
	Error
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Code identifies the kind of diagnostic, per spec.md §4.7.
type Code string

// The fixed set of diagnostic codes the validator emits.
const (
	InvalidMemObj            Code = "INVALID_MEM_OBJ"
	InvalidCB                Code = "INVALID_CB"
	InvalidObject            Code = "INVALID_OBJECT"
	RebindObject             Code = "REBIND_OBJECT"
	MissingMemBindings       Code = "MISSING_MEM_BINDINGS"
	MemoryBindingError       Code = "MEMORY_BINDING_ERROR"
	MemObjClearEmptyBindings Code = "MEM_OBJ_CLEAR_EMPTY_BINDINGS"
	FreedMemRef              Code = "FREED_MEM_REF"
	MemoryLeak               Code = "MEMORY_LEAK"
	InvalidFenceState        Code = "INVALID_FENCE_STATE"
	ResetCBWhileInFlight     Code = "RESET_CB_WHILE_IN_FLIGHT"
	InternalError            Code = "INTERNAL_ERROR"
)

// Message is a single diagnostic emission.
type Message struct {
	Severity Severity
	Code     Code
	// Site is the name of the tracker operation that emitted the
	// message (e.g. "bind_object_memory"), mirroring the call-site
	// prefixes used by the original implementation.
	Site string
	// Handle, if non-zero, is the primary object handle the message
	// concerns.
	Handle uint64
	Text   string
}

// String renders the message the way it would appear in the log file.
func (m Message) String() string {
	if m.Handle != 0 {
		return fmt.Sprintf("[%s] %s: %s (handle=%#x) %s", m.Severity, m.Code, m.Site, m.Handle, m.Text)
	}
	return fmt.Sprintf("[%s] %s: %s %s", m.Severity, m.Code, m.Site, m.Text)
}

// Callback is a diagnostic callback registered by the application,
// paired with the opaque user data it was registered with.
type Callback struct {
	Func     func(m Message, userData any)
	UserData any
}

// Action is a bitmask selecting which sinks receive a message, mirroring
// spec.md §6's DebugAction configuration field.
type Action int

const (
	ActionLogFile Action = 1 << iota
	ActionCallback
	ActionBreakpoint
	ActionDefault = ActionLogFile
)

// node is one entry in the sink's singly-linked callback list.
type node struct {
	cb   Callback
	next *node
}

// Sink receives diagnostic messages and dispatches them to whichever
// outputs are configured: an append-only log file and/or a list of
// registered callbacks. It is safe for concurrent use.
type Sink struct {
	mu  sync.Mutex
	log *zap.Logger

	minSeverity Severity
	action      Action

	head *node
	tail *node
	n    int

	emitted map[Code]int
}

// New creates a Sink that logs through log (nil disables file output)
// and emits messages at or above minSeverity.
func New(log *zap.Logger, minSeverity Severity, action Action) *Sink {
	return &Sink{
		log:         log,
		minSeverity: minSeverity,
		action:      action,
		emitted:     make(map[Code]int),
	}
}

// Register adds a callback to the sink's list. Registering the first
// callback flips the sink into callback mode, per spec.md §6.
func (s *Sink) Register(fn func(m Message, userData any), userData any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &node{cb: Callback{Func: fn, UserData: userData}}
	if s.head == nil {
		s.head = n
		s.tail = n
		s.action |= ActionCallback
	} else {
		s.tail.next = n
		s.tail = n
	}
	s.n++
}

// Unregister removes the earliest registered callback matching fn.
// Unregistering the last callback flips the default action back off,
// per spec.md §6.
func (s *Sink) Unregister(fn func(m Message, userData any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *node
	for cur := s.head; cur != nil; cur = cur.next {
		ptrEq := fmt.Sprintf("%p", cur.cb.Func) == fmt.Sprintf("%p", fn)
		if ptrEq {
			if prev == nil {
				s.head = cur.next
			} else {
				prev.next = cur.next
			}
			if cur == s.tail {
				s.tail = prev
			}
			s.n--
			break
		}
		prev = cur
	}
	if s.n == 0 {
		s.action &^= ActionCallback
	}
}

// Emit dispatches a message to every configured sink, provided its
// severity is at or above the sink's minimum.
func (s *Sink) Emit(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitted[m.Code]++
	if m.Severity < s.minSeverity {
		return
	}
	if s.action&ActionLogFile != 0 && s.log != nil {
		switch m.Severity {
		case Error:
			s.log.Error(m.String(), zap.String("code", string(m.Code)), zap.String("site", m.Site))
		case Warning:
			s.log.Warn(m.String(), zap.String("code", string(m.Code)), zap.String("site", m.Site))
		default:
			s.log.Info(m.String(), zap.String("code", string(m.Code)), zap.String("site", m.Site))
		}
	}
	if s.action&ActionCallback != 0 {
		for cur := s.head; cur != nil; cur = cur.next {
			cur.cb.Func(m, cur.cb.UserData)
		}
	}
}

// Count returns how many messages of the given code have been emitted,
// regardless of whether they passed the severity filter.
func (s *Sink) Count(code Code) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitted[code]
}

// Total returns how many diagnostics have been emitted in total.
func (s *Sink) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.emitted {
		n += c
	}
	return n
}
