package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wecode/proxyman/pmux"
)

var literal = []pmux.Descriptor{
	{Host: "96.44.187.55", Port: 8080, Username: "xfj", Password: "xfj"},
	{Host: "128.199.211.84", Port: 8080, Username: "xfj", Password: "xfj"},
	{Host: "tg.sumoo.top", Port: 808, Username: "pdomo", Password: "pdomo"},
	{Host: "tgfree1.ml", Port: 23333, Username: "public", Password: "free"},
}

func TestDefaultHoldsBuiltinTable(t *testing.T) {
	r := Default()
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, literal, r.Entries())
}

func TestEntriesIsACopy(t *testing.T) {
	entries := Default().Entries()
	entries[0].Host = "127.0.0.1"
	d, ok := Default().Get(0)
	require.True(t, ok)
	assert.Equal(t, "96.44.187.55", d.Host)
}

func TestPickReturnsMember(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := Pick()
		assert.True(t, d.Valid())
		assert.Contains(t, literal, d)
	}
}

func TestPickCoversAllEntries(t *testing.T) {
	seen := map[pmux.Descriptor]int{}
	for i := 0; i < 10000; i++ {
		seen[Default().Pick()]++
	}
	assert.Len(t, seen, 4)
	for _, d := range literal {
		assert.Positive(t, seen[d], d.String())
	}
	// the slot past the end goes to the first entry
	share := float64(seen[literal[0]]) / 10000
	assert.InDelta(t, 0.4, share, 0.05)
}

func TestPickFallsBackToFirstEntry(t *testing.T) {
	r, err := New(literal...)
	require.NoError(t, err)

	var spans []int
	for _, draw := range []int{4, 5, -1, 100} {
		r.intn = func(n int) int {
			spans = append(spans, n)
			return draw
		}
		d, fallback := r.pick()
		assert.True(t, fallback)
		assert.Equal(t, literal[0], d)
	}
	assert.Equal(t, []int{5, 5, 5, 5}, spans)

	for i := range literal {
		draw := i
		r.intn = func(int) int { return draw }
		d, fallback := r.pick()
		assert.False(t, fallback)
		assert.Equal(t, literal[i], d)
	}
}

func TestConcurrentPicks(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				d := Pick()
				if !Default().Contains(d) {
					t.Errorf("unexpected descriptor: %s", d)
					return
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, literal, Default().Entries())
}

func TestDefaultIsBuiltOnce(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Registry, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Default()
		}(i)
	}
	wg.Wait()
	for _, r := range got {
		assert.Same(t, got[0], r)
	}
	assert.Equal(t, int32(1), constructions.Load())
}

func TestNewValidates(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New(literal[0], pmux.Descriptor{Host: "tg.sumoo.top"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.EqualError(t, err, "entry 1 (socks5://tg.sumoo.top:0): invalid descriptor")
}

func TestGet(t *testing.T) {
	r := Default()
	d, ok := r.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "tgfree1.ml:23333", d.Address())

	_, ok = r.Get(4)
	assert.False(t, ok)
	_, ok = r.Get(-1)
	assert.False(t, ok)
}
