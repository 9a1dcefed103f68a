package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

func TestSink_AppendAndEvents(t *testing.T) {
	sink := NewSink()

	sink.Append(domain.AuditEvent{CycleID: "c1", Stage: domain.StageCacheLookup, At: time.Now()})
	sink.Append(domain.AuditEvent{CycleID: "c1", Stage: domain.StageCompleted, At: time.Now()})

	events := sink.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, domain.StageCacheLookup, events[0].Stage)
	assert.Equal(t, domain.StageCompleted, events[1].Stage)
}

func TestSink_CapacityEvictsOldest(t *testing.T) {
	sink := NewSink(WithCapacity(3))

	for i := 0; i < 5; i++ {
		sink.Append(domain.AuditEvent{CycleID: fmt.Sprintf("c%d", i)})
	}

	events := sink.Events()
	assert.Len(t, events, 3)
	assert.Equal(t, "c2", events[0].CycleID)
	assert.Equal(t, "c4", events[2].CycleID)
}

func TestSink_ByCycle(t *testing.T) {
	sink := NewSink()

	sink.Append(domain.AuditEvent{CycleID: "a", Stage: domain.StageGeneration})
	sink.Append(domain.AuditEvent{CycleID: "b", Stage: domain.StageGeneration})
	sink.Append(domain.AuditEvent{CycleID: "a", Stage: domain.StageCompleted})

	events := sink.ByCycle("a")
	assert.Len(t, events, 2)
	assert.Equal(t, domain.StageGeneration, events[0].Stage)
	assert.Equal(t, domain.StageCompleted, events[1].Stage)
	assert.Empty(t, sink.ByCycle("missing"))
}

func TestSink_ConcurrentAppend(t *testing.T) {
	sink := NewSink(WithCapacity(1000))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				sink.Append(domain.AuditEvent{CycleID: fmt.Sprintf("c%d", n)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, sink.Len())
}
