package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy_FCFS(t *testing.T) {
	p, err := NewPolicy("fcfs", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyFCFS, p.Kind)
	assert.Equal(t, "First Come First Served", p.Name())
	assert.Equal(t, "fcfs", p.Kind.Tag())
}

func TestNewPolicy_RoundRobin_DefaultQuantum(t *testing.T) {
	p, err := NewPolicy("rr", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, p.Kind)
	assert.Equal(t, uint64(DefaultQuantum), p.Quantum)
	assert.Equal(t, "Round Robin", p.Name())
}

func TestNewPolicy_RoundRobin_ExplicitQuantum(t *testing.T) {
	p, err := NewPolicy("rr", 12)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), p.Quantum)
}

func TestNewPolicy_Unknown_Errors(t *testing.T) {
	_, err := NewPolicy("sjf", 0)
	assert.ErrorContains(t, err, `unknown scheduling policy "sjf"`)
}

func TestPolicy_Schedule_EmptyReadyLeavesCoreIdle(t *testing.T) {
	// GIVEN a core with nothing ready
	c := &core{}
	p, err := NewPolicy("rr", 3)
	require.NoError(t, err)

	// WHEN the policy runs
	p.schedule(c)

	// THEN the running slot stays empty
	assert.Nil(t, c.running)
}

func TestPolicy_Schedule_FCFS_NoSplitting(t *testing.T) {
	// GIVEN a ready process with a long CPU burst
	c := &core{}
	proc := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 50, ResourceUsage: 0.5}})
	c.ready.Enqueue(proc)
	p, err := NewPolicy("fcfs", 0)
	require.NoError(t, err)

	// WHEN FCFS schedules
	p.schedule(c)

	// THEN the head runs with its burst intact
	require.Equal(t, proc, c.running)
	assert.Len(t, proc.Events, 1)
	assert.Equal(t, uint64(50), proc.Events[0].Duration)
	assert.Zero(t, c.ready.Len())
}

func TestPolicy_Schedule_RoundRobin_SplitPreservesResourceUsage(t *testing.T) {
	c := &core{}
	proc := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 9, ResourceUsage: 0.33}})
	c.ready.Enqueue(proc)
	p, err := NewPolicy("rr", 4)
	require.NoError(t, err)

	p.schedule(c)

	require.Equal(t, proc, c.running)
	require.Len(t, proc.Events, 2)
	assert.Equal(t, Event{Kind: EventCPU, Duration: 4, ResourceUsage: 0.33}, proc.Events[0])
	assert.Equal(t, Event{Kind: EventCPU, Duration: 5, ResourceUsage: 0.33}, proc.Events[1])
}

func TestPolicy_Schedule_RoundRobin_ExactQuantumNotSplit(t *testing.T) {
	c := &core{}
	proc := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 4, ResourceUsage: 0.5}})
	c.ready.Enqueue(proc)
	p, err := NewPolicy("rr", 4)
	require.NoError(t, err)

	p.schedule(c)

	require.Len(t, proc.Events, 1)
	assert.Equal(t, uint64(4), proc.Events[0].Duration)
}
