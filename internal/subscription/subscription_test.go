package subscription

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_HandlersInOrder(t *testing.T) {
	set := Set[func() int]{}

	set.Subscribe(func() int { return 1 })
	set.Subscribe(func() int { return 2 })
	set.Subscribe(func() int { return 3 })

	var got []int
	for _, handler := range set.Handlers() {
		got = append(got, handler())
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSet_Unsubscribe(t *testing.T) {
	set := Set[func() int]{}

	set.Subscribe(func() int { return 1 })
	sub := set.Subscribe(func() int { return 2 })
	set.Subscribe(func() int { return 3 })

	sub.Unsubscribe()
	sub.Unsubscribe()

	require.Equal(t, 2, set.Len())

	var got []int
	for _, handler := range set.Handlers() {
		got = append(got, handler())
	}
	assert.Equal(t, []int{1, 3}, got)
}

func TestSet_UnsubscribeDoesNotAffectSnapshot(t *testing.T) {
	set := Set[func() int]{}

	sub := set.Subscribe(func() int { return 1 })
	set.Subscribe(func() int { return 2 })

	handlers := set.Handlers()
	sub.Unsubscribe()

	assert.Len(t, handlers, 2)
	assert.Equal(t, 1, handlers[0]())
	assert.Equal(t, 1, set.Len())
}

func TestSet_NilSubscription(t *testing.T) {
	var sub *Subscription

	assert.NotPanics(t, sub.Unsubscribe)
}

func TestSet_Clear(t *testing.T) {
	set := Set[func()]{}

	set.Subscribe(func() {})
	set.Subscribe(func() {})
	set.Clear()

	assert.Zero(t, set.Len())
	assert.Empty(t, set.Handlers())
}

func TestSet_Concurrent(t *testing.T) {
	set := Set[func()]{}
	wg := sync.WaitGroup{}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := set.Subscribe(func() {})
			_ = set.Handlers()
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	assert.Zero(t, set.Len())
}
