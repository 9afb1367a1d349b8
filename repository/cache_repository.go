package repository

import "context"

// CacheRepository stores computed quotes by request hash.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
