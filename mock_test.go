package speechactivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jiyeyuran/speechactivity/internal/subscription"
)

type MockFunc struct {
	require    *require.Assertions
	notifyChan chan []interface{}
	results    [][]interface{}
	timeout    time.Duration
}

func NewMockFunc(t *testing.T) *MockFunc {
	return &MockFunc{
		require:    require.New(t),
		notifyChan: make(chan []interface{}, 100),
		timeout:    300 * time.Millisecond,
	}
}

func (w *MockFunc) WithTimeout(timeout time.Duration) *MockFunc {
	w.timeout = timeout
	return w
}

// Fn returns a notification handler recording its calls.
func (w *MockFunc) Fn() func() {
	w.Reset()

	notifyChan := w.notifyChan

	return func() {
		notifyChan <- []interface{}{time.Now()}
	}
}

func (w *MockFunc) ExpectCalled(msgAndArgs ...interface{}) {
	w.require.NotZero(w.CalledTimes(), msgAndArgs...)
}

func (w *MockFunc) ExpectCalledTimes(called int, msgAndArgs ...interface{}) {
	w.require.Equal(called, w.CalledTimes(), msgAndArgs...)
}

// CalledTimes collects the calls made within the timeout.
func (w *MockFunc) CalledTimes() int {
	w.wait()
	return len(w.results)
}

// CalledAt returns the times of the calls collected so far.
func (w *MockFunc) CalledAt() []time.Time {
	w.wait()

	times := make([]time.Time, 0, len(w.results))
	for _, result := range w.results {
		times = append(times, result[0].(time.Time))
	}
	return times
}

// WaitCalled blocks until the next call, failing after the timeout.
func (w *MockFunc) WaitCalled() {
	select {
	case result := <-w.notifyChan:
		w.results = append(w.results, result)
	case <-time.After(w.timeout):
		w.require.FailNow("fn is not called")
	}
}

func (w *MockFunc) Reset() {
	w.notifyChan = make(chan []interface{}, 100)
	w.results = nil
}

func (w *MockFunc) wait() {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	for {
		select {
		case result := <-w.notifyChan:
			w.results = append(w.results, result)
		case <-timer.C:
			return
		}
	}
}

// fakeDetector is a DominantSpeakerIdentification driven by the tests.
type fakeDetector struct {
	mock.Mock

	activeSpeakerHandlers  subscription.Set[func(uint32)]
	propertyChangeHandlers subscription.Set[func(string)]
	snapshot               func() H
}

func newFakeDetector() *fakeDetector {
	d := &fakeDetector{}
	d.On("LevelChanged", mock.Anything, mock.Anything).Maybe()
	return d
}

func (d *fakeDetector) LevelChanged(ssrc uint32, level int) {
	d.Called(ssrc, level)
}

func (d *fakeDetector) OnActiveSpeakerChanged(handler func(ssrc uint32)) Subscription {
	return d.activeSpeakerHandlers.Subscribe(handler)
}

func (d *fakeDetector) OnPropertyChange(handler func(name string)) Subscription {
	return d.propertyChangeHandlers.Subscribe(handler)
}

func (d *fakeDetector) Snapshot() H {
	if d.snapshot == nil {
		return H{}
	}
	return d.snapshot()
}

// speak makes ssrc the active speaker.
func (d *fakeDetector) speak(ssrc uint32) {
	for _, handler := range d.activeSpeakerHandlers.Handlers() {
		handler(ssrc)
	}
	for _, handler := range d.propertyChangeHandlers.Handlers() {
		handler(DominantSpeakerPropertyName)
	}
}

// basicDetector is an ActiveSpeakerDetector without diagnostics.
type basicDetector struct {
	handlers subscription.Set[func(uint32)]
}

func (d *basicDetector) LevelChanged(ssrc uint32, level int) {}

func (d *basicDetector) OnActiveSpeakerChanged(handler func(ssrc uint32)) Subscription {
	return d.handlers.Subscribe(handler)
}

// wrappingDetector delegates to impl the way detector selectors do.
type wrappingDetector struct {
	impl ActiveSpeakerDetector
}

func (d *wrappingDetector) LevelChanged(ssrc uint32, level int) {
	d.impl.LevelChanged(ssrc, level)
}

func (d *wrappingDetector) OnActiveSpeakerChanged(handler func(ssrc uint32)) Subscription {
	return d.impl.OnActiveSpeakerChanged(handler)
}

func (d *wrappingDetector) Impl() ActiveSpeakerDetector {
	return d.impl
}
