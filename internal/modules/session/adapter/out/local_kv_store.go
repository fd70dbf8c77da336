package out

import (
	"context"

	sessionout "dsaboost/internal/modules/session/port/out"
	"dsaboost/internal/platform/localstore"
)

// LocalKVStore adapts the vault-local file store to the session ports.
type LocalKVStore struct {
	kv *localstore.FileKV
}

func NewLocalKVStore(kv *localstore.FileKV) sessionout.KeyValue {
	return &LocalKVStore{kv: kv}
}

func (s *LocalKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, key)
}

func (s *LocalKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.Set(ctx, key, value)
}

func (s *LocalKVStore) Remove(ctx context.Context, key string) error {
	return s.kv.Remove(ctx, key)
}

func (s *LocalKVStore) Watch(ctx context.Context, fn func(key string, value []byte)) error {
	return s.kv.Watch(ctx, func(change localstore.Change) {
		if change.Removed {
			fn(change.Key, nil)
			return
		}
		fn(change.Key, change.Value)
	})
}
