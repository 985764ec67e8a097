package domain

import "time"

// Stream names used by capture wiring.
const (
	WindowStream    = "window"
	BlocklyStream   = "blockly"
	ProgramStream   = "program"
	SimulatorStream = "simulator"
	ExceptionStream = "exception"
)

// Kinds of events that are not workspace mutations.
const (
	KindClick     = "click"
	KindPointer   = "mousemove"
	KindResize    = "resize"
	KindProgram   = "program"
	KindAnalytics = "analytics"
	KindException = "exception"
	KindError     = "error"
)

var now = time.Now

// Record is the flat transport-safe form of an event.
type Record map[string]any

// Event is implemented by every captured event variant.
type Event interface {
	Kind() string
	Timestamp() int64
	Render() Record
}

// Base is the plain event: a kind, a capture time and an optional payload.
type Base struct {
	kind      string
	timestamp int64
	payload   any
}

func NewEvent(kind string, payload any) *Base {
	b := newBase(kind)
	b.payload = payload
	return &b
}

func newBase(kind string) Base {
	return Base{
		kind:      kind,
		timestamp: now().UnixMilli(),
	}
}

func (e *Base) Kind() string {
	return e.kind
}

func (e *Base) Timestamp() int64 {
	return e.timestamp
}

func (e *Base) header() Record {
	return Record{
		"kind":      e.kind,
		"timestamp": e.timestamp,
	}
}

func (e *Base) Render() Record {
	r := e.header()
	r["payload"] = e.payload
	return r
}

// Batch is one flushed stream as it goes over the wire.
type Batch struct {
	ID            string   `json:"-"`
	EditorVersion string   `json:"editorVersion"`
	Namespace     string   `json:"namespace"`
	Data          []Record `json:"data"`
}

// ExceptionRecord is what the exception bridge hands to external sinks.
type ExceptionRecord struct {
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Props     map[string]string `json:"props"`
	Timestamp int64             `json:"timestamp"`
}

func NewExceptionRecord(kind string, err error, props map[string]string) ExceptionRecord {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ExceptionRecord{
		Kind:      kind,
		Message:   msg,
		Props:     props,
		Timestamp: now().UnixMilli(),
	}
}
