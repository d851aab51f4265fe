package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	ch := r.Register("alice")
	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, ch, got)

	_, ok = r.Lookup("bob")
	assert.False(t, ok)
}

func TestRegisterReplacesAndClosesOldStream(t *testing.T) {
	r := NewRegistry()

	old := r.Register("alice")
	fresh := r.Register("alice")

	_, open := <-old
	assert.False(t, open, "replaced stream should be closed")

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, fresh, got)
	assert.Equal(t, 1, r.Connected())
}

func TestUnregisterIgnoresStaleHandle(t *testing.T) {
	r := NewRegistry()

	stale := r.Register("alice")
	fresh := r.Register("alice")

	// The writer of the replaced stream unregisters on its way out; that
	// must not evict the new connection.
	r.Unregister("alice", stale)

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, fresh, got)

	r.Unregister("alice", fresh)
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
}

func TestPushDeliversToRegisteredUser(t *testing.T) {
	r := NewRegistry()

	ch := r.Register("bob")
	require.True(t, r.Push("bob", []byte("hello")))

	assert.Equal(t, "hello", string(<-ch))
}

func TestPushToAbsentUserIsDropped(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Push("nobody", []byte("hello")))
}

func TestPushDropsWhenStreamIsFull(t *testing.T) {
	r := NewRegistry()

	r.Register("slow")
	for i := 0; i < streamBuffer; i++ {
		require.True(t, r.Push("slow", []byte("event")))
	}

	assert.False(t, r.Push("slow", []byte("overflow")))
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%10)
			ch := r.Register(userID)
			r.Push(userID, []byte("event"))
			r.Unregister(userID, ch)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Connected())
}
