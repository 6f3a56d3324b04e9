package object

import (
	"context"
	"io"
)

// Object is a stored upload. Path is readable from the local filesystem until
// the object is removed.
type Object struct {
	ID        string
	Path      string
	FileName  string
	SizeBytes int64
	SHA256    string
}

// Store stages uploads for the lifetime of one request.
type Store interface {
	Save(ctx context.Context, fileName string, r io.Reader) (Object, error)
	Remove(ctx context.Context, obj Object) error
}
