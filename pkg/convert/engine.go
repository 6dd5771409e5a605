// ABOUTME: Streaming PCM conversion engine
// ABOUTME: Buffers PCM into codec frames, encodes on a serial worker and tracks completion
package convert

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/audiokit-go/pkg/audio"
	"github.com/Sendspin/audiokit-go/pkg/audio/encode"
	"github.com/google/uuid"
)

// packetEncoder is implemented by codecs that keep packet boundaries
type packetEncoder interface {
	EncodePackets(pcm []int16) ([][]byte, error)
}

type bitRater interface {
	BitRate() int
}

// Stats is a snapshot of an engine's counters
type Stats struct {
	Status    Status
	Submitted int64
	Converted int64
	Errors    int64
}

// Outstanding returns packets submitted but not yet converted
func (s Stats) Outstanding() int64 {
	return s.Submitted - s.Converted
}

// Engine converts a stream of PCM into one compressed format.
//
// Submit and RequestStop never block. All codec work happens on the
// engine's own worker goroutine; events are delivered on the configured
// Dispatcher.
type Engine struct {
	id       string
	codec    encode.Codec
	packets  packetEncoder
	input    audio.Format
	output   audio.Format
	bitRate  int
	padFinal bool

	work      *Queue
	notify    Dispatcher
	ownNotify *Queue
	callbacks atomic.Pointer[Callbacks]
	metrics   *Metrics

	// guards status, acct, drained, closed, ended, errors
	mu          sync.Mutex
	status      Status
	acct        accountant
	drained     bool
	closed      bool
	ended       bool
	errors      int64
	loggedDrops bool

	// worker only
	framer *framer

	releaseOnce sync.Once
	done        chan struct{}
}

// NewEngine creates an engine around an already configured codec. The
// engine takes ownership of codec and closes it exactly once.
func NewEngine(codec encode.Codec, cfg Config) (*Engine, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: codec is required", ErrInvalidConfig)
	}
	if err := cfg.validateInput(); err != nil {
		return nil, err
	}
	out, err := cfg.resolveOutput(codec.Name())
	if err != nil {
		return nil, err
	}
	if codec.FrameSamples() < 1 {
		return nil, fmt.Errorf("%w: codec %s reports frame size %d", ErrInvalidConfig, codec.Name(), codec.FrameSamples())
	}

	frames := chunkFrames(codec.FrameSamples(), cfg.Input.SampleRate, cfg.MinChunkDuration)

	id := uuid.New().String()
	e := &Engine{
		id:       id,
		codec:    codec,
		input:    cfg.Input,
		output:   out,
		bitRate:  cfg.BitRate,
		padFinal: !cfg.DropFinalFrame,
		work:     NewQueue("convert-" + id[:8]),
		notify:   cfg.Notify,
		metrics:  cfg.Metrics,
		framer:   newFramer(frames*cfg.Input.BytesPerFrame(), codec.FrameSamples()*cfg.Input.BytesPerFrame()),
		done:     make(chan struct{}),
	}
	if pe, ok := codec.(packetEncoder); ok {
		e.packets = pe
	}
	if br, ok := codec.(bitRater); ok {
		e.bitRate = br.BitRate()
	}
	if e.notify == nil {
		e.ownNotify = NewQueue("notify-" + id[:8])
		e.notify = e.ownNotify
	}
	cb := cfg.Callbacks
	e.callbacks.Store(&cb)

	e.metrics.sessionStarted(codec.Name())
	log.Printf("[convert %s] %s -> %s, %d frames per chunk", e.shortID(), e.input, e.output, frames)

	return e, nil
}

// ID returns the session identifier
func (e *Engine) ID() string { return e.id }

// InputFormat returns the PCM format Submit expects
func (e *Engine) InputFormat() audio.Format { return e.input }

// OutputFormat returns the target format
func (e *Engine) OutputFormat() audio.Format { return e.output }

// BitRate returns the target bit rate, 0 when the codec has none
func (e *Engine) BitRate() int { return e.bitRate }

// Done is closed after the stopped event has been delivered
func (e *Engine) Done() <-chan struct{} { return e.done }

// Status returns the current lifecycle state
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Stats returns a consistent snapshot of the counters
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Status:    e.status,
		Submitted: e.acct.submitted,
		Converted: e.acct.converted,
		Errors:    e.errors,
	}
}

// SetCallbacks replaces the event handlers
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.callbacks.Store(&cb)
}

// Detach drops the event handlers. Events already queued for delivery
// are discarded; conversion and accounting continue.
func (e *Engine) Detach() {
	e.callbacks.Store(nil)
}

// Submit hands PCM to the engine. data must hold packets packets of equal
// size, each a whole number of sample frames of the input format. Submit
// copies data and returns without waiting for the codec.
//
// After RequestStop the call is a no-op: the data is dropped and nil is
// returned, even once the engine is closed. Closing a converting engine
// makes Submit fail with ErrClosed.
func (e *Engine) Submit(data []byte, packets int) error {
	if err := e.checkSubmission(data, packets); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	buf := bytes.Clone(data)
	bytesPerPacket := len(data) / packets

	e.mu.Lock()
	if e.status != StatusConverting {
		first := !e.loggedDrops
		e.loggedDrops = true
		e.mu.Unlock()

		if first {
			log.Printf("[convert %s] stop requested, dropping further submissions", e.shortID())
		}
		e.metrics.dropped(e.codec.Name())
		return nil
	}
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.acct.submit(packets)
	e.work.Dispatch(func() {
		e.process(buf, bytesPerPacket, packets)
	})
	e.mu.Unlock()

	e.metrics.submitted(e.codec.Name(), packets)
	return nil
}

func (e *Engine) checkSubmission(data []byte, packets int) error {
	if packets < 0 {
		return fmt.Errorf("%w: negative packet count %d", ErrPacketMismatch, packets)
	}
	if len(data) == 0 {
		if packets != 0 {
			return fmt.Errorf("%w: %d packets declared for empty data", ErrPacketMismatch, packets)
		}
		return nil
	}
	frame := e.input.BytesPerFrame()
	if len(data)%frame != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of the %d byte frame of %s",
			ErrMisalignedInput, len(data), frame, e.input)
	}
	if packets == 0 || len(data)%packets != 0 || (len(data)/packets)%frame != 0 {
		return fmt.Errorf("%w: %d bytes cannot be split into %d packets of whole frames",
			ErrPacketMismatch, len(data), packets)
	}
	return nil
}

// RequestStop begins a graceful drain. Queued data is still converted, a
// trailing partial frame is padded (or dropped with DropFinalFrame), the
// codec is flushed, and the stopped event fires once everything is
// accounted for. Calling it again has no effect.
//
// There is no abort: to discard a session stop submitting, call Close and
// drop the engine.
func (e *Engine) RequestStop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusConverting || e.closed {
		return
	}
	e.status = StatusStopping
	log.Printf("[convert %s] stop requested with %d packets outstanding", e.shortID(), e.acct.outstanding())
	e.work.Dispatch(e.drain)
}

// Wait blocks until the engine has stopped or ctx is done
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close discards the session. Work already queued still runs, then the
// codec is released. A session closed while converting never emits the
// stopped event. A drain already started by RequestStop still completes
// and delivers it. Close is idempotent and never fails.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	stopped := e.status == StatusStopped
	ended := false
	if e.status == StatusConverting {
		ended = e.endSessionLocked()
	}
	if !stopped {
		e.work.Dispatch(func() {
			e.release()
			if e.ownNotify != nil {
				e.ownNotify.Close()
			}
		})
		e.work.Close()
	}
	e.mu.Unlock()

	if ended {
		e.metrics.sessionEnded(e.codec.Name())
	}
	return nil
}

// endSessionLocked reports true to the first caller only. A session is
// ended by Close while converting, otherwise by finish.
func (e *Engine) endSessionLocked() bool {
	if e.ended {
		return false
	}
	e.ended = true
	return true
}

// process runs on the worker for every accepted submission
func (e *Engine) process(data []byte, bytesPerPacket, packets int) {
	e.framer.push(data, bytesPerPacket, packets)
	for {
		chunk, completed, ok := e.framer.next()
		if !ok {
			return
		}
		e.convert(chunk, completed, false)
	}
}

// drain runs on the worker after the last accepted submission
func (e *Engine) drain() {
	chunk, completed := e.framer.drain(e.padFinal)
	e.convert(chunk, completed, true)

	e.mu.Lock()
	e.drained = true
	finished := e.checkCompletionLocked()
	e.mu.Unlock()

	if finished {
		e.finish()
	}
}

// convert encodes one chunk, emits its result and accounts its packets.
// A nil chunk only accounts. final also drains the codec.
func (e *Engine) convert(chunk []byte, completed int, final bool) {
	start := time.Now()

	var out []byte
	var frames [][]byte
	var err error
	if len(chunk) > 0 {
		pcm := audio.Int16FromBytes(chunk, e.input.BitDepth)
		if e.packets != nil {
			frames, err = e.packets.EncodePackets(pcm)
			for _, f := range frames {
				out = append(out, f...)
			}
		} else {
			out, err = e.codec.Encode(pcm)
		}
		if err != nil {
			e.reportError(err)
			out, frames = nil, nil
		}
	}

	// a failed chunk does not discard the codec tail
	if final {
		tail, ferr := e.codec.Flush()
		if ferr != nil {
			e.reportError(ferr)
		} else if len(tail) > 0 {
			out = append(out, tail...)
			frames = nil
		}
	}

	packets := completed
	if err != nil {
		packets = 0
	}
	if len(out) > 0 || (err == nil && completed > 0 && len(chunk) > 0) {
		e.emitConverted(ConvertedChunk{Data: out, Frames: frames, Packets: packets})
	}

	e.metrics.converted(e.codec.Name(), completed, len(out), time.Since(start))
	e.account(completed)
}

func (e *Engine) account(completed int) {
	e.mu.Lock()
	e.acct.complete(completed)
	finished := e.checkCompletionLocked()
	e.mu.Unlock()

	if finished {
		e.finish()
	}
}

// checkCompletionLocked moves Stopping to Stopped once the drain ran and
// the counters match. It reports true exactly once.
func (e *Engine) checkCompletionLocked() bool {
	if !e.drained || !e.acct.isComplete(e.status) {
		return false
	}
	e.status = StatusStopped
	return true
}

// finish runs on the worker exactly once, after the transition to Stopped
func (e *Engine) finish() {
	e.release()

	e.mu.Lock()
	converted := e.acct.converted
	ended := e.endSessionLocked()
	e.mu.Unlock()

	log.Printf("[convert %s] conversion stopped after %d packets", e.shortID(), converted)
	if ended {
		e.metrics.sessionEnded(e.codec.Name())
	}

	e.notify.Dispatch(func() {
		if cb := e.callbacks.Load(); cb != nil && cb.OnStopped != nil {
			cb.OnStopped()
		}
		close(e.done)
	})

	e.work.Close()
	if e.ownNotify != nil {
		e.ownNotify.Close()
	}
}

// release closes the codec; failures are logged, never returned
func (e *Engine) release() {
	e.releaseOnce.Do(func() {
		if err := e.codec.Close(); err != nil {
			log.Printf("[convert %s] Warning: failed to release %s codec: %v", e.shortID(), e.codec.Name(), err)
		}
	})
}

func (e *Engine) reportError(err error) {
	ce := encode.AsCodecError(e.codec.Name(), err)

	e.mu.Lock()
	e.errors++
	e.mu.Unlock()

	log.Printf("[convert %s] %v", e.shortID(), ce)
	e.metrics.codecError(e.codec.Name())

	e.notify.Dispatch(func() {
		if cb := e.callbacks.Load(); cb != nil && cb.OnError != nil {
			cb.OnError(ce)
		}
	})
}

func (e *Engine) emitConverted(chunk ConvertedChunk) {
	e.notify.Dispatch(func() {
		if cb := e.callbacks.Load(); cb != nil && cb.OnConverted != nil {
			cb.OnConverted(chunk)
		}
	})
}

func (e *Engine) shortID() string {
	return e.id[:8]
}
