package document

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryIssuer keeps issued documents in memory. Backs unit tests and the
// simulate command; FailWith forces every Issue call to fail for exercising
// the partial-failure path.
type MemoryIssuer struct {
	mu       sync.Mutex
	kind     Kind
	issued   map[uuid.UUID]IssueRequest
	FailWith error
}

func NewMemoryIssuer(kind Kind) *MemoryIssuer {
	return &MemoryIssuer{
		kind:   kind,
		issued: make(map[uuid.UUID]IssueRequest),
	}
}

func (i *MemoryIssuer) Issue(_ context.Context, req IssueRequest) (uuid.UUID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.FailWith != nil {
		return uuid.Nil, i.FailWith
	}

	id := uuid.New()
	i.issued[id] = req
	return id, nil
}

// Issued returns the request stored under id, for assertions.
func (i *MemoryIssuer) Issued(id uuid.UUID) (IssueRequest, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	req, ok := i.issued[id]
	return req, ok
}

// Count returns how many documents this issuer has created.
func (i *MemoryIssuer) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.issued)
}
