// Package record implements the event recorder (spec §4.4): an explicit
// stack of open evaluation steps, paired start/end calls building a
// hierarchical Event tree as evaluation proceeds. It implements
// eval.Recorder so internal/eval never imports this package directly — the
// capability interface lives on eval's side, this package only satisfies it.
package record

import "github.com/ruleweave/ruleweave/internal/eval"

// Event is one node in the hierarchical evaluation record (spec §4.4,
// GLOSSARY "Event"). Kind/Label/Status/Detail mirror what eval.Recorder's
// Start/End calls were given; Children holds nested events in the order
// they completed.
type Event struct {
	Kind     eval.RecordKind
	Label    string
	Status   eval.Status
	Detail   eval.Detail
	Children []*Event
}

// frame is an open (not-yet-ended) event: the partially built Event, which
// End appends to its parent's Children once it ends.
type frame struct {
	event *Event
}

// Recorder is an explicit stack of open frames owned by a single
// evaluation (spec §5: "the recorder stack is exclusive to that
// evaluation" — never share one Recorder across concurrent evaluations).
// Start pushes a new frame; End pops the top frame, fills in its outcome,
// and appends it to its new-top parent's Children (or stores it as Root if
// the stack is now empty).
type Recorder struct {
	stack []*frame
	root  *Event
}

// New returns an empty Recorder ready to drive one evaluation.
func New() *Recorder {
	return &Recorder{}
}

var _ eval.Recorder = (*Recorder)(nil)

// Start opens a new event of the given kind/label and returns a handle
// identifying it (spec §4.4 start_record). The handle is the stack depth
// after the push (1 for the outermost event), which End compares against
// the current depth.
func (r *Recorder) Start(kind eval.RecordKind, label string) int {
	ev := &Event{Kind: kind, Label: label}
	r.stack = append(r.stack, &frame{event: ev})
	return len(r.stack)
}

// End closes the event Start returned handle for, recording its final
// Status and Detail, and attaches it to its parent (spec §4.4 end_record).
// Pairing discipline (every Start has exactly one matching End, in LIFO
// order) is the caller's responsibility; End only ever pops the top frame,
// and a handle that does not match the top of the stack (or a call on an
// empty stack) is silently ignored, leaving the stack unchanged.
func (r *Recorder) End(handle int, status eval.Status, detail eval.Detail) {
	if len(r.stack) == 0 || handle != len(r.stack) {
		return
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	top.event.Status = status
	top.event.Detail = detail

	if len(r.stack) == 0 {
		r.root = top.event
		return
	}
	parent := r.stack[len(r.stack)-1]
	parent.event.Children = append(parent.event.Children, top.event)
}

// Root returns the completed top-level event once every Start has a
// matching End, or nil if the recorder never closed its outermost frame
// (a sign of an unbalanced start/end sequence upstream).
func (r *Recorder) Root() *Event {
	return r.root
}

// Open reports how many frames are currently unclosed; used by tests to
// assert the start/end pairing invariant (spec §4.3 "start/end must be
// paired and their pairing is a testable invariant").
func (r *Recorder) Open() int {
	return len(r.stack)
}
