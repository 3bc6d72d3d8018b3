package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestDo_Memoizes(t *testing.T) {
	c := New(0)
	key := Key{Func: "fetch", Args: "orlen"}
	calls := 0
	fn := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := Do(c, key, fn)
	assert.NoError(t, err)
	assert.Equal(t, v, 42)

	v, err = Do(c, key, fn)
	assert.NoError(t, err)
	assert.Equal(t, v, 42)
	assert.Equal(t, calls, 1)
}

func TestDo_ErrorStaysUntilInvalidated(t *testing.T) {
	c := New(0)
	key := Key{Func: "fetch", Args: "nope"}
	boom := errors.New("boom")
	calls := 0
	failing := func() (string, error) {
		calls++
		return "", boom
	}

	_, err := Do(c, key, failing)
	assert.True(t, errors.Is(err, boom))
	_, err = Do(c, key, failing)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, calls, 1)

	// A retry after invalidation re-executes the call.
	c.Invalidate(key)
	v, err := Do(c, key, func() (string, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, v, "ok")
}

func TestInvalidateArgs(t *testing.T) {
	c := New(0)
	c.Put(Key{Func: "data", Args: "orlen"}, 1, nil)
	c.Put(Key{Func: "name", Args: "orlen"}, "ORLEN", nil)
	c.Put(Key{Func: "data", Args: "pko"}, 2, nil)

	assert.Equal(t, c.InvalidateArgs("orlen"), 2)
	assert.Equal(t, c.Len(), 1)

	_, _, ok := c.Get(Key{Func: "data", Args: "pko"})
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, c.Len(), 0)
}

func TestMaxAge(t *testing.T) {
	now := time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC)
	c := New(time.Hour)
	c.Now = func() time.Time { return now }

	key := Key{Func: "data", Args: "orlen"}
	c.Put(key, 1, nil)

	now = now.Add(59 * time.Minute)
	_, _, ok := c.Get(key)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, _, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, c.Len(), 0)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{Func: "f", Args: string(rune('a' + i%4))}
			_, _ = Do(c, key, func() (int, error) { return i, nil })
			c.Invalidate(key)
		}(i)
	}
	wg.Wait()
	assert.True(t, c.Len() <= 4)
}
