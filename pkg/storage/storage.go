// Package storage keeps the flattened form images. Put returns an opaque id
// that is stored on the form row and handed back to Get and Delete.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoObject = errors.New("storage: no object")

type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) ([]byte, string, error)
	Delete(ctx context.Context, id string) error
}

// Options selects and configures a Store
type Options struct {
	Driver   string // local | s3 | memory
	Path     string
	S3Region string
	S3Bucket string
	S3Prefix string
}

// New builds the store named by opts.Driver
func New(opts Options) (Store, error) {
	switch opts.Driver {
	case "", "local":
		return NewLocalStore(opts.Path)
	case "s3":
		if opts.S3Bucket == "" {
			return nil, errors.New("storage: s3 driver requires a bucket")
		}
		return NewS3FromRegion(opts.S3Region, opts.S3Bucket, opts.S3Prefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
