package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/wecode/proxyman/pmux"
)

var (
	ErrEmpty   = errors.New("registry has no entries")
	ErrInvalid = errors.New("invalid descriptor")
)

// builtin is the proxy table shipped with the binary
var builtin = []pmux.Descriptor{
	pmux.NewDescriptor("96.44.187.55", 8080, "xfj", "xfj"),
	pmux.NewDescriptor("128.199.211.84", 8080, "xfj", "xfj"),
	pmux.NewDescriptor("tg.sumoo.top", 808, "pdomo", "pdomo"),
	pmux.NewDescriptor("tgfree1.ml", 23333, "public", "free"),
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	// constructions counts how many times the default registry was built
	constructions atomic.Int32
)

// Default returns the process-wide registry over the built-in table,
// building it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New(builtin...)
		if err != nil {
			panic(err)
		}
		constructions.Add(1)
		defaultRegistry = r
	})
	return defaultRegistry
}

// Pick is a shorthand for Default().Pick()
func Pick() pmux.Descriptor {
	return Default().Pick()
}

// Registry is read-only after New returns, so all methods are safe for
// concurrent use.
type Registry struct {
	entries []pmux.Descriptor
	intn    func(int) int
}

func New(entries ...pmux.Descriptor) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	for i, d := range entries {
		if !d.Valid() {
			return nil, fmt.Errorf("entry %d (%s): %w", i, d, ErrInvalid)
		}
	}
	return &Registry{
		entries: slices.Clone(entries),
		intn:    rand.Intn,
	}, nil
}

// Pick draws one slot past the last entry and answers that slot with the
// first entry, so entries[0] comes back twice as often as any other.
func (r *Registry) Pick() pmux.Descriptor {
	d, _ := r.pick()
	return d
}

// pick also reports whether the draw fell back to the first entry
func (r *Registry) pick() (pmux.Descriptor, bool) {
	n := r.intn(len(r.entries) + 1)
	if n >= 0 && n < len(r.entries) {
		return r.entries[n], false
	}
	log.Trace().Int("draw", n).Msg("draw out of range, using first entry")
	return r.entries[0], true
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) Get(i int) (pmux.Descriptor, bool) {
	if i < 0 || i >= len(r.entries) {
		return pmux.Descriptor{}, false
	}
	return r.entries[i], true
}

// Entries returns a copy in declaration order
func (r *Registry) Entries() []pmux.Descriptor {
	return slices.Clone(r.entries)
}

func (r *Registry) Contains(d pmux.Descriptor) bool {
	return slices.Contains(r.entries, d)
}
