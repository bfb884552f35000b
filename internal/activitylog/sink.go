// SPDX-License-Identifier: Unlicense OR MIT

package activitylog

// Sink decouples the hook/animator hot path from log I/O: Offer never
// blocks, dropping records when the channel is full rather than
// stalling a wheel event or an animation frame.
type Sink struct {
	events      chan Event
	states      chan StateChange
	completions chan Completion
	stop        chan struct{}
	done        chan struct{}
}

// NewSink starts a background goroutine that drains events, state
// changes, and completions into w until Close is called. capacity
// bounds each channel.
func NewSink(w *Writer, capacity int) *Sink {
	s := &Sink{
		events:      make(chan Event, capacity),
		states:      make(chan StateChange, capacity),
		completions: make(chan Completion, capacity),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go s.run(w)
	return s
}

func (s *Sink) run(w *Writer) {
	defer close(s.done)
	for {
		select {
		case ev := <-s.events:
			_ = w.WriteEvent(ev)
		case sc := <-s.states:
			_ = w.WriteStateChange(sc)
		case c := <-s.completions:
			_ = w.WriteCompletion(c)
		case <-s.stop:
			s.drain(w)
			return
		}
	}
}

// drain flushes whatever is already queued after a stop request, so a
// Close doesn't silently lose records that were offered just before it.
func (s *Sink) drain(w *Writer) {
	for {
		select {
		case ev := <-s.events:
			_ = w.WriteEvent(ev)
			continue
		case sc := <-s.states:
			_ = w.WriteStateChange(sc)
			continue
		case c := <-s.completions:
			_ = w.WriteCompletion(c)
			continue
		default:
		}
		return
	}
}

// OfferEvent attempts to enqueue ev, dropping it silently if the sink
// is saturated.
func (s *Sink) OfferEvent(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// OfferStateChange attempts to enqueue sc, dropping it silently if the
// sink is saturated. State changes are rare enough in practice that
// drops here would be surprising, but the path must still never block.
func (s *Sink) OfferStateChange(sc StateChange) {
	select {
	case s.states <- sc:
	default:
	}
}

// OfferCompletion attempts to enqueue c, dropping it silently if the
// sink is saturated. Called from animator goroutines at the end of a
// run; it must never stall a frame.
func (s *Sink) OfferCompletion(c Completion) {
	select {
	case s.completions <- c:
	default:
	}
}

// Close signals the drain goroutine to flush what's queued and stop,
// and waits for it to finish.
func (s *Sink) Close() {
	close(s.stop)
	<-s.done
}
