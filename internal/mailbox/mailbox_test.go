package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_PutTake(t *testing.T) {
	mb := New[string]()
	assert.True(t, mb.Empty())

	replaced := mb.Put("first")
	assert.False(t, replaced)
	assert.False(t, mb.Empty())

	v, ok := mb.Take()
	require.True(t, ok)
	assert.Equal(t, "first", v)
	assert.True(t, mb.Empty())

	_, ok = mb.Take()
	assert.False(t, ok)
}

func TestMailbox_PutOverwrites(t *testing.T) {
	mb := New[string]()

	mb.Put("first")
	replaced := mb.Put("second")
	assert.True(t, replaced)

	v, ok := mb.Take()
	require.True(t, ok)
	assert.Equal(t, "second", v)

	// The first value must never surface again.
	_, ok = mb.Take()
	assert.False(t, ok)
}

func TestMailbox_Peek(t *testing.T) {
	mb := New[int]()

	_, ok := mb.Peek()
	assert.False(t, ok)

	mb.Put(7)
	v, ok := mb.Peek()
	require.True(t, ok)
	assert.Equal(t, 7, v)

	// Peek does not consume.
	v, ok = mb.Take()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestMailbox_Clear(t *testing.T) {
	mb := New[int]()
	mb.Put(1)
	mb.Clear()

	assert.True(t, mb.Empty())
	_, ok := mb.Take()
	assert.False(t, ok)

	// Clearing an empty mailbox is a no-op.
	mb.Clear()
	assert.True(t, mb.Empty())
}

func TestMailbox_ConcurrentPut(t *testing.T) {
	mb := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mb.Put(n)
		}(i)
	}
	wg.Wait()

	_, ok := mb.Take()
	assert.True(t, ok)
	assert.True(t, mb.Empty())
}
