package speechactivity

import (
	"time"
	"weak"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// eventDispatcher fires the change notifications of a SpeechActivity in the background. It
// only holds a weak pointer to its owner so that a running dispatcher does not keep an
// abandoned SpeechActivity alive; the pointer is resolved again on every iteration and the
// dispatcher exits once it no longer resolves.
type eventDispatcher struct {
	id      string
	owner   weak.Pointer[SpeechActivity]
	wake    chan struct{}
	exited  chan struct{}
	logger  logr.Logger
	metrics *Metrics
}

func newEventDispatcher(owner *SpeechActivity) *eventDispatcher {
	id := uuid.NewString()

	return &eventDispatcher{
		id:      id,
		owner:   weak.Make(owner),
		wake:    make(chan struct{}, 1),
		exited:  make(chan struct{}),
		logger:  owner.logger.WithValues("dispatcherId", id),
		metrics: owner.metrics,
	}
}

func (d *eventDispatcher) run() {
	d.logger.V(1).Info("event dispatcher started")

	defer func() {
		// Let the owner forget about this dispatcher so that it can start a new one.
		if owner := d.owner.Value(); owner != nil {
			owner.eventDispatcherExited(d)
		}
		d.metrics.dispatcherExited()
		d.logger.V(1).Info("event dispatcher exited")
		close(d.exited)
	}()

	for {
		next, wait := d.step()
		if !next {
			return
		}
		if wait > 0 {
			d.sleep(wait)
		}
	}
}

// step runs one iteration against the owner. The strong reference to the owner does not
// outlive the call.
func (d *eventDispatcher) step() (next bool, wait time.Duration) {
	owner := d.owner.Value()
	if owner == nil {
		return false, 0
	}
	return owner.runInEventDispatcher(d)
}

func (d *eventDispatcher) sleep(wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-d.wake:
	case <-timer.C:
	}
}

// signal wakes the dispatcher if it is sleeping, or makes its next sleep return at once.
func (d *eventDispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}
