package out

import "context"

// KeyValue is the vault-local store shared with the session module.
// Get returns apperrors.ErrNotFound for missing keys.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
