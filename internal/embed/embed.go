// Package embed defines the optional remote embedding client. The default
// local-vector tier (internal/search's L2) hashes tokens directly and
// never calls out of process; Embedder exists so a caller that wants
// richer vectors can plug one in without touching the search tiers'
// interface, but nothing in the core ingestion or search path constructs
// or calls one by default.
package embed

import "context"

// Dimensions is the vector width a remote embedder is expected to return.
// It intentionally differs from search's local 256-dim bag-of-words; a
// caller wiring a remote embedder into its own pipeline is responsible for
// reconciling the two.
const Dimensions = 768

// Embedder generates vector embeddings for text out of process. No
// component in internal/search or internal/ingest depends on this
// interface; it is provided for an external collaborator that wants to
// swap the local hashed-bag-of-words tier for a remote model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}
