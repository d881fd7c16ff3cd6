package blob

import "context"

// Store es el contrato mínimo de blobs para adjuntos.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
