package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator fournit des identifiants uniques; aucun format n'est supposé par l'appelant
type Generator interface {
	NewID() string
}

// UUIDGenerator génère des UUID v4
type UUIDGenerator struct{}

// NewUUIDGenerator provider Fx
func NewUUIDGenerator() Generator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence générateur déterministe (tests, exports reproductibles)
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}
