// Package parallel provides a fork-join helper over index ranges.
package parallel

import (
	"runtime"
	"sync"
)

// Execute partitions [0, nbIterations) across CPUs, runs work on each chunk
// in its own goroutine and waits for completion. Chunks are disjoint, so work
// may write to per-index output slots without synchronization.
func Execute(nbIterations int, work func(start, end int)) {
	if nbIterations <= 0 {
		return
	}

	nbTasks := runtime.NumCPU()
	nbIterationsPerCpus := nbIterations / nbTasks

	// more CPUs than iterations: one iteration per task
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = nbIterations
	}

	var wg sync.WaitGroup

	extraTasks := nbIterations - (nbTasks * nbIterationsPerCpus)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		start := i*nbIterationsPerCpus + extraTasksOffset
		end := start + nbIterationsPerCpus
		if extraTasks > 0 {
			end++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(start, end)
			wg.Done()
		}()
	}

	wg.Wait()
}
