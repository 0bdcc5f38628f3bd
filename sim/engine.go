// sim/engine.go
//
// The tick-driven state machine at the heart of the simulator. The engine
// owns the process population, the per-core pipelines and the timer, and
// advances them atomically one tick per Step call under the active policy.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// MaxCores bounds the number of simulated cores.
const MaxCores = 9

// core holds one core's pipeline. A process belongs to at most one of the
// three queues or the running slot at any instant.
type core struct {
	arrivals ProcessQueue // processes whose arrival tick has not come yet
	ready    ProcessQueue // CPU front event, awaiting the running slot
	waiting  ProcessQueue // IO front event
	running  *Process     // at most one process executing
	cpuUsage float64      // resource usage of the running burst, 0 when idle
}

// Bounds are the user-configurable limits consumed by spawn_random_process.
// They default to the full numeric range, i.e. effectively unbounded, and
// survive Restart.
type Bounds struct {
	MaxProcesses           uint64
	MaxEventsPerProcess    uint64
	MaxSingleEventDuration uint64
	MaxArrivalTime         uint64
}

// DefaultBounds returns the unbounded limit set.
func DefaultBounds() Bounds {
	return Bounds{
		MaxProcesses:           math.MaxUint64,
		MaxEventsPerProcess:    math.MaxUint64,
		MaxSingleEventDuration: math.MaxUint64,
		MaxArrivalTime:         math.MaxUint64,
	}
}

// Engine is the multi-core scheduler simulation. It is not thread-safe; the
// caller serializes Step, EmplaceProcess, Restart and every accessor. Step
// runs to completion per call, so observers between calls always see a
// consistent snapshot.
type Engine struct {
	policy     Policy
	cores      []core
	finished   []*Process
	timer      uint64
	nextCore   int
	throughput float64
	bounds     Bounds
}

// NewEngine creates an empty engine with the given policy and core count.
// Core counts outside [1, MaxCores] are clamped.
func NewEngine(policy Policy, numCores int) *Engine {
	if numCores < 1 {
		numCores = 1
	}
	if numCores > MaxCores {
		numCores = MaxCores
	}
	return &Engine{
		policy: policy,
		cores:  make([]core, numCores),
		bounds: DefaultBounds(),
	}
}

// EmplaceProcess appends a new process to the arrivals queue of the next
// core in round-robin order and advances the cursor. Validation (pid
// uniqueness, non-empty events) happens later, at admission time.
func (e *Engine) EmplaceProcess(name string, pid, arrival uint64, events []Event) *Process {
	p := NewProcess(name, pid, arrival, events)
	e.cores[e.nextCore].arrivals.Enqueue(p)
	e.nextCore = (e.nextCore + 1) % len(e.cores)
	return p
}

// Complete reports whether every queue and running slot is empty.
func (e *Engine) Complete() bool {
	for i := range e.cores {
		c := &e.cores[i]
		if c.running != nil || c.arrivals.Len() > 0 || c.ready.Len() > 0 || c.waiting.Len() > 0 {
			return false
		}
	}
	return true
}

// SwitchPolicy hot-swaps the scheduling policy for subsequent steps.
// Queues are left untouched.
func (e *Engine) SwitchPolicy(p Policy) {
	e.policy = p
}

// Step advances the simulation by one tick. Per core, in index order:
// admit arrivals, advance the waiting queue, advance the running slot,
// schedule, then sample CPU utilization. Throughput and the timer update
// once after all cores.
func (e *Engine) Step() {
	logrus.Debugf("[tick %07d] stepping %d cores", e.timer, len(e.cores))

	for i := range e.cores {
		c := &e.cores[i]
		e.admitArrivals(i, c)
		e.advanceWaiting(i, c)
		e.advanceRunning(i, c)

		if c.running == nil {
			e.policy.schedule(c)
		}
		// Safety net: a policy that declined to run anything must not
		// leave a ready core idle.
		if c.running == nil && c.ready.Len() > 0 {
			c.running = c.ready.Dequeue()
		}

		c.cpuUsage = 0
		if c.running != nil {
			c.cpuUsage = c.running.FrontEvent().ResourceUsage
		}
	}

	if e.timer != 0 {
		e.throughput = float64(len(e.finished)) / float64(e.timer)
	}
	e.timer++
}

// Restart resets the timer, every queue, the finished list, per-core usage
// and the round-robin cursor. The configured policy and bounds persist.
func (e *Engine) Restart() {
	for i := range e.cores {
		c := &e.cores[i]
		c.arrivals.Clear()
		c.ready.Clear()
		c.waiting.Clear()
		c.running = nil
		c.cpuUsage = 0
	}
	e.finished = nil
	e.timer = 0
	e.nextCore = 0
	e.throughput = 0
}

// admitArrivals moves every process whose arrival tick is now into the
// ready or waiting queue, dropping duplicates and event-less processes
// with a diagnostic. Rejected processes leave the arrivals queue too.
func (e *Engine) admitArrivals(coreIdx int, c *core) {
	var retained []*Process
	for _, p := range c.arrivals.Items() {
		if p.Arrival != e.timer {
			retained = append(retained, p)
			continue
		}
		if !e.pidIsUnique(c, p.PID) {
			logrus.Errorf("process %s with pid %d is already in use, skipping...", p.Name, p.PID)
			continue
		}
		if len(p.Events) == 0 {
			logrus.Errorf("process %s with pid %d should at least have one event, skipping...", p.Name, p.PID)
			continue
		}
		e.dispatchByFirstEvent(c, p)
		logrus.Debugf("[tick %07d] core %d admitted %s/%d", e.timer, coreIdx, p.Name, p.PID)
	}
	c.arrivals.ReplaceAll(retained)
}

// advanceWaiting decrements the front IO burst of every waiting process.
// Exhausted bursts pop; drained processes finish; the rest redispatch.
// Dispatches are deferred until after the scan so the tick's effects on the
// waiting queue land atomically.
func (e *Engine) advanceWaiting(coreIdx int, c *core) {
	var retained, toDispatch []*Process
	for _, p := range c.waiting.Items() {
		ev := p.FrontEvent()
		if ev == nil || ev.Kind != EventIO || ev.Duration == 0 {
			panic("advanceWaiting: waiting process must have a pending IO front event")
		}
		ev.Duration--
		if ev.Duration > 0 {
			retained = append(retained, p)
			continue
		}
		p.PopEvent()
		if len(p.Events) == 0 {
			p.MarkFinished(e.timer)
			e.finished = append(e.finished, p)
			logrus.Debugf("[tick %07d] core %d finished %s/%d in waiting", e.timer, coreIdx, p.Name, p.PID)
			continue
		}
		toDispatch = append(toDispatch, p)
	}
	c.waiting.ReplaceAll(retained)
	for _, p := range toDispatch {
		e.dispatchByFirstEvent(c, p)
	}
}

// advanceRunning decrements the running process's front CPU burst. When the
// burst exhausts, the process finishes or redispatches and the slot clears.
func (e *Engine) advanceRunning(coreIdx int, c *core) {
	p := c.running
	if p == nil {
		return
	}
	ev := p.FrontEvent()
	if ev == nil || ev.Kind != EventCPU || ev.Duration == 0 {
		panic("advanceRunning: running process must have a pending CPU front event")
	}
	ev.Duration--
	if ev.Duration > 0 {
		return
	}
	p.PopEvent()
	if len(p.Events) == 0 {
		p.MarkFinished(e.timer)
		e.finished = append(e.finished, p)
		logrus.Debugf("[tick %07d] core %d finished %s/%d in running", e.timer, coreIdx, p.Name, p.PID)
	} else {
		e.dispatchByFirstEvent(c, p)
	}
	c.running = nil
}

// dispatchByFirstEvent routes a process to ready or waiting depending on its
// front event. Entering the CPU ready path records the first-start tick.
func (e *Engine) dispatchByFirstEvent(c *core, p *Process) {
	ev := p.FrontEvent()
	if ev == nil {
		panic("dispatchByFirstEvent: process has no events")
	}
	switch ev.Kind {
	case EventCPU:
		p.MarkStarted(e.timer)
		c.ready.Enqueue(p)
	case EventIO:
		c.waiting.Enqueue(p)
	default:
		panic("dispatchByFirstEvent: unhandled event kind")
	}
}

// pidIsUnique checks the pid against the core's ready/waiting queues and
// running slot. Arrivals are not consulted: two not-yet-admitted processes
// may carry the same pid, and the later one is rejected at its admission
// only if the earlier one is still in ready, waiting or running on this core.
func (e *Engine) pidIsUnique(c *core, pid uint64) bool {
	if c.running != nil && c.running.PID == pid {
		return false
	}
	for _, p := range c.ready.Items() {
		if p.PID == pid {
			return false
		}
	}
	for _, p := range c.waiting.Items() {
		if p.PID == pid {
			return false
		}
	}
	return true
}

// === Read-only accessors ===

// Timer returns the current tick count.
func (e *Engine) Timer() uint64 { return e.timer }

// Throughput returns finished-count / timer, updated each Step.
func (e *Engine) Throughput() float64 { return e.throughput }

// Finished returns the append-only list of drained processes.
func (e *Engine) Finished() []*Process { return e.finished }

// NumCores returns the configured core count.
func (e *Engine) NumCores() int { return len(e.cores) }

// Policy returns the active scheduling policy.
func (e *Engine) Policy() Policy { return e.policy }

// Bounds exposes the spawn_random_process limits for the DSL front end.
func (e *Engine) Bounds() *Bounds { return &e.bounds }

// CPUUsage returns the sampled usage share of core i (0 when idle).
func (e *Engine) CPUUsage(i int) float64 { return e.cores[i].cpuUsage }

// Running returns the process executing on core i, or nil.
func (e *Engine) Running(i int) *Process { return e.cores[i].running }

// Arrivals returns core i's not-yet-admitted processes.
func (e *Engine) Arrivals(i int) []*Process { return e.cores[i].arrivals.Items() }

// Ready returns core i's ready queue contents.
func (e *Engine) Ready(i int) []*Process { return e.cores[i].ready.Items() }

// Waiting returns core i's waiting queue contents.
func (e *Engine) Waiting(i int) []*Process { return e.cores[i].waiting.Items() }
