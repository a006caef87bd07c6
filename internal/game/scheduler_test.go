package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerDueOrder(t *testing.T) {
	var s Scheduler
	s.Schedule(t0.Add(300*time.Millisecond), EventSpawn)
	s.Schedule(t0.Add(100*time.Millisecond), EventHide)
	s.Schedule(t0.Add(100*time.Millisecond), EventSpawn)
	s.Schedule(t0.Add(time.Second), EventHide)

	assert.Nil(t, s.Due(t0))
	assert.Equal(t, []EventKind{EventHide, EventSpawn}, s.Due(t0.Add(100*time.Millisecond)))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []EventKind{EventSpawn, EventHide}, s.Due(t0.Add(time.Hour)))
	assert.Zero(t, s.Len())
}

func TestSchedulerCancel(t *testing.T) {
	var s Scheduler
	s.Schedule(t0, EventHide)
	s.Schedule(t0, EventSpawn)
	s.Schedule(t0.Add(time.Second), EventHide)

	assert.Equal(t, 2, s.Cancel(EventHide))
	assert.False(t, s.Pending(EventHide))
	assert.True(t, s.Pending(EventSpawn))
	assert.Zero(t, s.Cancel(EventHide))
	assert.Equal(t, []EventKind{EventSpawn}, s.Due(t0))
}

func TestSchedulerReset(t *testing.T) {
	var s Scheduler
	s.Schedule(t0, EventHide)
	s.Reset()
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Due(t0.Add(time.Hour)))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "spawn", EventSpawn.String())
	assert.Equal(t, "hide", EventHide.String())
	assert.Equal(t, "unknown", EventKind(9).String())
}
