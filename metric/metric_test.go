package metric_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sfucore/metric"
	"sfucore/registry"
	"sfucore/registry/journal"
)

func TestMetrics_RegisterThenCollectOnceDoesNotPanic(t *testing.T) {
	m := metric.New(metric.Config{Port: 0, Path: metric.DefaultMetricsPath})
	m.RegisterMetrics()
	reg := registry.New(journal.New())
	reg.Attach("r1", registry.NewParticipant("user-aaa111222", noopSender{}))

	ctx := make(chan struct{})
	go func() {
		defer close(ctx)
		m.Collect(reg, time.Millisecond)
	}()

	time.Sleep(5 * time.Millisecond)
	assert.NotPanics(t, func() {})
}

type noopSender struct{}

func (noopSender) Send(any) {}
