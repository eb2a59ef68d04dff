package progress

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const defaultBuffer = 256

// AsyncSink forwards progress lines to a logger from a single background goroutine. Lines reported while the buffer is
// full are dropped and counted
type AsyncSink struct {
	logger  *zap.Logger
	lines   chan string
	dropped atomic.Uint64

	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
	mutex     sync.RWMutex
}

// NewAsync starts the background writer. A non-positive buffer selects the default size
func NewAsync(logger *zap.Logger, buffer int) *AsyncSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	sink := &AsyncSink{
		logger: logger,
		lines:  make(chan string, buffer),
		done:   make(chan struct{}),
	}
	go sink.run()
	return sink
}

func (sink *AsyncSink) run() {
	defer close(sink.done)
	for line := range sink.lines {
		sink.logger.Info(line)
	}
}

func (sink *AsyncSink) Report(line string) {
	sink.mutex.RLock()
	defer sink.mutex.RUnlock()

	if sink.closed.Load() {
		sink.dropped.Add(1)
		return
	}
	select {
	case sink.lines <- line:
	default:
		sink.dropped.Add(1)
	}
}

// Dropped returns the number of lines that were not delivered
func (sink *AsyncSink) Dropped() uint64 {
	return sink.dropped.Load()
}

// Close writes the buffered lines and stops the background goroutine. Later reports are dropped
func (sink *AsyncSink) Close() error {
	sink.closeOnce.Do(func() {
		sink.mutex.Lock()
		sink.closed.Store(true)
		close(sink.lines)
		sink.mutex.Unlock()
	})
	<-sink.done
	if dropped := sink.Dropped(); dropped > 0 {
		sink.logger.Warn("progress lines dropped", zap.Uint64("dropped", dropped))
	}
	return nil
}
