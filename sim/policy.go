// Scheduling policies: the selection discipline applied to a core's ready
// queue whenever that core has no running process.

package sim

import "fmt"

// PolicyKind tags the scheduling discipline.
type PolicyKind uint8

const (
	PolicyFCFS PolicyKind = iota
	PolicyRoundRobin
)

// String returns the display name used in metrics reports.
func (k PolicyKind) String() string {
	switch k {
	case PolicyFCFS:
		return "First Come First Served"
	case PolicyRoundRobin:
		return "Round Robin"
	default:
		return fmt.Sprintf("PolicyKind(%d)", uint8(k))
	}
}

// Tag returns the stable short name used for CLI selection and telemetry.
func (k PolicyKind) Tag() string {
	switch k {
	case PolicyFCFS:
		return "fcfs"
	case PolicyRoundRobin:
		return "rr"
	default:
		return fmt.Sprintf("policy-%d", uint8(k))
	}
}

// DefaultQuantum is the Round Robin time slice when none is configured.
const DefaultQuantum = 5

// Policy selects which ready process a core runs next. It is a tagged
// variant rather than an open callback type so the engine can hot-swap
// policies between steps without reshuffling any queue.
type Policy struct {
	Kind    PolicyKind
	Quantum uint64 // Round Robin only
}

// NewPolicy resolves a policy by tag. Valid tags: "fcfs", "rr".
// A zero quantum selects DefaultQuantum.
func NewPolicy(tag string, quantum uint64) (Policy, error) {
	if quantum == 0 {
		quantum = DefaultQuantum
	}
	switch tag {
	case "fcfs":
		return Policy{Kind: PolicyFCFS}, nil
	case "rr":
		return Policy{Kind: PolicyRoundRobin, Quantum: quantum}, nil
	default:
		return Policy{}, fmt.Errorf("unknown scheduling policy %q (valid: fcfs, rr)", tag)
	}
}

// Name returns the display name of the policy.
func (p Policy) Name() string {
	return p.Kind.String()
}

// schedule fills the core's running slot from its ready queue. Called by the
// engine only when the slot is empty. Round Robin additionally splits the
// front CPU burst so the process executes at most Quantum consecutive ticks
// before being requeued.
func (p Policy) schedule(c *core) {
	next := c.ready.Dequeue()
	if next == nil {
		return
	}
	c.running = next

	if p.Kind != PolicyRoundRobin {
		return
	}

	front := next.FrontEvent()
	if front == nil || front.Kind != EventCPU {
		panic("schedule: ready process must have a CPU front event")
	}
	if front.Duration > p.Quantum {
		front.Duration -= p.Quantum
		next.PushFrontEvent(Event{
			Kind:          EventCPU,
			Duration:      p.Quantum,
			ResourceUsage: front.ResourceUsage,
		})
	}
}
