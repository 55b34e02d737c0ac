package model

import (
	"context"
	"time"
)

// Storage is the object store holding uploaded material files.
type Storage interface {
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
