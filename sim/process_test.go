package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_MarkStarted_FirstWriteWins(t *testing.T) {
	p := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 1}})

	p.MarkStarted(3)
	p.MarkStarted(7)

	start, ok := p.StartTime()
	require.True(t, ok)
	assert.Equal(t, uint64(3), start)
}

func TestProcess_MarkFinished_FirstWriteWins(t *testing.T) {
	p := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 1}})

	p.MarkFinished(5)
	p.MarkFinished(9)

	finish, ok := p.FinishTime()
	require.True(t, ok)
	assert.Equal(t, uint64(5), finish)
}

func TestProcess_Timestamps_UnsetByDefault(t *testing.T) {
	p := NewProcess("A", 1, 2, nil)

	_, startSet := p.StartTime()
	_, finishSet := p.FinishTime()
	assert.False(t, startSet)
	assert.False(t, finishSet)
	assert.Zero(t, p.WaitingTime())
	assert.Zero(t, p.TurnaroundTime())
}

func TestProcess_WaitingAndTurnaround_RelativeToArrival(t *testing.T) {
	p := NewProcess("A", 1, 4, []Event{{Kind: EventCPU, Duration: 1}})
	p.MarkStarted(6)
	p.MarkFinished(10)

	assert.Equal(t, uint64(2), p.WaitingTime())
	assert.Equal(t, uint64(6), p.TurnaroundTime())
}

func TestProcess_EventQueueOperations(t *testing.T) {
	p := NewProcess("A", 1, 0, []Event{
		{Kind: EventCPU, Duration: 2},
		{Kind: EventIO, Duration: 3},
	})

	front := p.FrontEvent()
	require.NotNil(t, front)
	assert.Equal(t, EventCPU, front.Kind)

	p.PopEvent()
	assert.Equal(t, EventIO, p.FrontEvent().Kind)

	p.PushFrontEvent(Event{Kind: EventCPU, Duration: 1})
	assert.Equal(t, EventCPU, p.FrontEvent().Kind)
	assert.Len(t, p.Events, 2)

	p.PopEvent()
	p.PopEvent()
	assert.Nil(t, p.FrontEvent())
}

func TestProcess_FrontEvent_MutableView(t *testing.T) {
	// The engine decrements burst durations through FrontEvent.
	p := NewProcess("A", 1, 0, []Event{{Kind: EventCPU, Duration: 2}})

	p.FrontEvent().Duration--

	assert.Equal(t, uint64(1), p.Events[0].Duration)
}
