package app

import (
	"sync"
	"time"

	"ai-trip-planner/internal/stream"
)

const progressInterval = 2500 * time.Millisecond

var progressDots = []string{".", "..", "..."}

// progressLoop emits shimmer text chunks while a long phase runs, so the
// stream never looks stalled between real events.
type progressLoop struct {
	emit     func(stream.Event)
	interval time.Duration

	mu    sync.Mutex
	phase string

	done chan struct{}
	once sync.Once
}

func startProgress(emit func(stream.Event)) *progressLoop {
	return startProgressEvery(emit, progressInterval)
}

func startProgressEvery(emit func(stream.Event), interval time.Duration) *progressLoop {
	p := &progressLoop{
		emit:     emit,
		interval: interval,
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// SetPhase swaps the shimmer text. An empty phase pauses emission.
func (p *progressLoop) SetPhase(phase string) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}

// Stop ends the loop. Safe to call more than once.
func (p *progressLoop) Stop() {
	p.once.Do(func() { close(p.done) })
}

func (p *progressLoop) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			phase := p.phase
			p.mu.Unlock()
			if phase == "" {
				continue
			}
			p.emit(stream.Event{
				Type: stream.EventTextChunk,
				Data: stream.TextPayload{Text: phase + progressDots[tick%len(progressDots)]},
			})
			tick++
		}
	}
}
