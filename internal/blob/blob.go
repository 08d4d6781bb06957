// Package blob is the file-storage collaborator. Version file contents live
// under refs (object keys); the engine only ever stores and removes whole
// blobs and hands out short-lived download URLs.
package blob

import (
	"context"
	"io"
	"time"
)

type Store interface {
	Put(ctx context.Context, ref string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, ref string) error
	PresignGet(ctx context.Context, ref string, ttl time.Duration) (string, error)
}
