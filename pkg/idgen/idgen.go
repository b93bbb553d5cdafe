package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces identifiers for baskets, line items and sale records.
// Injecting it keeps the checkout core deterministic under test.
type Generator interface {
	Next() string
}

type uuidGenerator struct{}

// NewUUID returns a Generator backed by random UUIDv4 strings.
func NewUUID() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) Next() string {
	return uuid.NewString()
}

// Sequential is a deterministic Generator for tests: prefix-1, prefix-2, ...
type Sequential struct {
	Prefix  string
	counter atomic.Int64
}

func (s *Sequential) Next() string {
	n := s.counter.Add(1)
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}
