package document

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces entry ids that are unique for the lifetime of a document
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces opaque "item-<uuid>" ids
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return "item-" + uuid.New().String()
}

// SequenceIDGenerator produces "item-1", "item-2", ... and is scoped to one store.
// Ids are never reused because the counter only moves forward.
type SequenceIDGenerator struct {
	next atomic.Uint64
}

// NewID implements IDGenerator.
func (g *SequenceIDGenerator) NewID() string {
	return "item-" + strconv.FormatUint(g.next.Add(1), 10)
}
