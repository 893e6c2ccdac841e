package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Prefixes for the three id namespaces.
const (
	PrefixLecture = "LEC"
	PrefixSystem  = "SYS"
	PrefixSheet   = "SHEET"
)

// Generator issues ids of the form PREFIX_<uuidv7>. UUIDv7 is time ordered and
// google/uuid keeps it monotonic within the process, so ids of one prefix sort
// by creation order.
type Generator struct {
	mu     sync.Mutex
	issued map[string]uint64
}

// New creates a generator and warms up the UUID source so the first real id is not slow.
func New() *Generator {
	uuid.EnableRandPool()
	_ = uuid.Must(uuid.NewV7())
	return &Generator{issued: make(map[string]uint64)}
}

// NewID returns a fresh id for prefix. An empty prefix is a programming error.
func (g *Generator) NewID(prefix string) string {
	if prefix == "" {
		panic("idgen: empty prefix")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		// only fails when the random source is broken
		panic(fmt.Sprintf("idgen: %v", err))
	}
	g.issued[prefix]++
	return prefix + "_" + id.String()
}

// Issued reports how many ids were handed out for prefix.
func (g *Generator) Issued(prefix string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued[prefix]
}
