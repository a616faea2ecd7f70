package engine

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

// gracePeriod is how long the process waits, after logging a worker
// death, before exiting. It gives the supervisor's health check a window
// to observe the failure before the process disappears.
const gracePeriod = 2 * time.Second

// job is a unit of work submitted to the pool. It reports its own result
// on resultCh so callers can treat a submission as a synchronous call.
type job struct {
	run      func() (any, error)
	resultCh chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// workerPool stands in for mediasoup's separate worker processes: a
// fixed-size set of goroutines that execute facade operations one at a
// time. A panicking worker is fail-stop — its internal state (whatever
// map or transport it was touching) is not recoverable, so the whole
// process exits rather than limping on with a worker short.
type workerPool struct {
	jobs chan job
	done chan struct{}
}

// workerCount returns min(4, NumCPU), per the facade's sizing rule.
func workerCount() int {
	n := runtime.NumCPU()
	if n > 4 {
		return 4
	}
	if n < 1 {
		return 1
	}
	return n
}

func newWorkerPool() *workerPool {
	p := &workerPool{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	for i := 0; i < workerCount(); i++ {
		go p.loop(i)
	}
	return p
}

func (p *workerPool) loop(id int) {
	for {
		select {
		case <-p.done:
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(id, j)
		}
	}
}

func (p *workerPool) execute(id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", id).Interface("panic", r).Msg("facade worker died, exiting after grace period")
			go func() {
				time.Sleep(gracePeriod)
				os.Exit(1)
			}()
			j.resultCh <- jobResult{err: errWorkerDied}
		}
	}()

	v, err := j.run()
	j.resultCh <- jobResult{value: v, err: err}
}

// submit runs fn on a pool worker and blocks for its result.
func (p *workerPool) submit(fn func() (any, error)) (any, error) {
	j := job{run: fn, resultCh: make(chan jobResult, 1)}
	p.jobs <- j
	res := <-j.resultCh
	return res.value, res.err
}

// stop closes the pool. Submitted-but-not-yet-picked-up jobs never run.
func (p *workerPool) stop() {
	close(p.done)
}
