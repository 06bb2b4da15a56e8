package store

import (
	"context"

	"waisdom/internal/models"
)

// Backend is the raw persistence layer under the content store. Read returns
// (nil, nil) for an unknown id; Remove reports whether a record existed.
type Backend interface {
	Write(ctx context.Context, record *models.ContentRecord) error
	Read(ctx context.Context, id string) (*models.ContentRecord, error)
	ReadAll(ctx context.Context) ([]*models.ContentRecord, error)
	Remove(ctx context.Context, id string) (bool, error)
}
