// Defines the Process struct that models a synthetic process in the simulation.
// Tracks the burst sequence, arrival tick, and first-start/finish timestamps
// used for waiting and turnaround statistics.

package sim

import (
	"fmt"
	"strings"
)

// Process is one synthetic process owned by the engine. The identifier block
// (Name, PID, Arrival) is fixed at creation; Events is a queue whose front is
// the burst currently being worked on.
type Process struct {
	Name    string
	PID     uint64
	Arrival uint64
	Events  []Event // front is the current burst

	startTime  uint64
	startSet   bool
	finishTime uint64
	finishSet  bool
}

// NewProcess builds a process with the given burst sequence. The events slice
// is owned by the process afterwards.
func NewProcess(name string, pid, arrival uint64, events []Event) *Process {
	return &Process{
		Name:    name,
		PID:     pid,
		Arrival: arrival,
		Events:  events,
	}
}

// FrontEvent returns the current burst, or nil if the process has drained.
func (p *Process) FrontEvent() *Event {
	if len(p.Events) == 0 {
		return nil
	}
	return &p.Events[0]
}

// PopEvent removes the current burst.
func (p *Process) PopEvent() {
	if len(p.Events) == 0 {
		panic("PopEvent: process has no events")
	}
	p.Events = p.Events[1:]
}

// PushFrontEvent inserts a burst at the front of the queue. Round Robin uses
// this to requeue the quantum-sized slice of a split CPU burst.
func (p *Process) PushFrontEvent(ev Event) {
	p.Events = append([]Event{ev}, p.Events...)
}

// MarkStarted records the tick the process first entered the CPU ready path.
// Later calls are no-ops: the first write wins.
func (p *Process) MarkStarted(tick uint64) {
	if p.startSet {
		return
	}
	p.startTime = tick
	p.startSet = true
}

// MarkFinished records the tick the last burst drained. First write wins.
func (p *Process) MarkFinished(tick uint64) {
	if p.finishSet {
		return
	}
	p.finishTime = tick
	p.finishSet = true
}

// StartTime returns the first-start tick and whether it has been recorded.
func (p *Process) StartTime() (uint64, bool) {
	return p.startTime, p.startSet
}

// FinishTime returns the finish tick and whether it has been recorded.
func (p *Process) FinishTime() (uint64, bool) {
	return p.finishTime, p.finishSet
}

// WaitingTime is start - arrival, or 0 if the process never started.
func (p *Process) WaitingTime() uint64 {
	if !p.startSet {
		return 0
	}
	return p.startTime - p.Arrival
}

// TurnaroundTime is finish - arrival, or 0 if the process never finished.
func (p *Process) TurnaroundTime() uint64 {
	if !p.finishSet {
		return 0
	}
	return p.finishTime - p.Arrival
}

func (p *Process) String() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, ev := range p.Events {
		sb.WriteString(ev.String())
		sb.WriteString(" ")
	}
	sb.WriteString("]")
	return fmt.Sprintf("Process{name: %s, pid: %d, arrival: %d, events: %s, waiting: %d, turnaround: %d}",
		p.Name, p.PID, p.Arrival, sb.String(), p.WaitingTime(), p.TurnaroundTime())
}
