package board

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/gridlife/creature"
)

// parallelThreshold is the minimum population to think in parallel.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// observation is what one creature asked for during the observe phase.
type observation struct {
	cand creature.Candidate
	ok   bool
	err  error
}

// workChunk represents a range of creatures for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the per-tick buffers and the worker pool.
type parallelState struct {
	ids       []uint32
	creatures []*creature.Creature
	results   []observation

	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{
		numWorkers: workers,
		ids:        make([]uint32, 0, 512),
		creatures:  make([]*creature.Creature, 0, 512),
		results:    make([]observation, 0, 512),
	}
}

// reset empties the per-tick buffers, keeping their capacity.
func (p *parallelState) reset() {
	p.ids = p.ids[:0]
	p.creatures = p.creatures[:0]
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(b *Board) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(b)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(b *Board) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			b.observeChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// observe runs every creature's brain against the current grid, choosing
// single or parallel evaluation by population size. Each creature touches
// only its own state and its own slot in results.
func (b *Board) observe() {
	p := b.parallel
	n := len(p.creatures)

	if cap(p.results) < n {
		p.results = make([]observation, n)
	}
	p.results = p.results[:n]

	if n < parallelThreshold || p.numWorkers <= 1 {
		b.observeChunk(0, n)
		return
	}
	b.observeParallel(n)
}

// observeParallel dispatches work to the worker pool.
func (b *Board) observeParallel(n int) {
	p := b.parallel
	if !p.running {
		p.startWorkers(b)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// observeChunk processes a range of creatures for a single worker.
func (b *Board) observeChunk(i0, i1 int) {
	p := b.parallel
	for i := i0; i < i1; i++ {
		cand, ok, err := p.creatures[i].Think(b.grid, b.opts.Senses)
		p.results[i] = observation{cand: cand, ok: ok, err: err}
	}
}
