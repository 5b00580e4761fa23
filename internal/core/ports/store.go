package ports

import "go.trai.ch/kiln/internal/core/domain"

// CompletionStore persists completion records between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CompletionStore interface {
	// Get retrieves the record stored under key.
	// Returns nil, nil if not found.
	Get(key string) (*domain.CompletionRecord, error)

	// Put stores the record under its key.
	Put(record domain.CompletionRecord) error

	// Delete removes the record stored under key.
	Delete(key string) error

	// Records returns every record sorted by key.
	Records() ([]domain.CompletionRecord, error)
}

// CompletionStoreOpener opens the ledger of a work directory.
type CompletionStoreOpener interface {
	Open(path string) (CompletionStore, error)
}
