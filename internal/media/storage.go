package media

import (
	"context"
	"io"
)

// Storage persists uploaded media files and serves back public locations.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, location string) error
}
