// Package idgen generates IDs for traced rides.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique IDs. Implementations are safe for concurrent
// use.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator emitting "1", "2", ... Runs that issue
// the same requests in the same order get the same IDs.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewParallel returns a generator of globally unique xid strings.
func NewParallel() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	next atomic.Uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(g.next.Add(1), 10)
}

type parallelGenerator struct{}

func (parallelGenerator) Generate() string {
	return xid.New().String()
}
