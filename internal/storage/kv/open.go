package kv

import (
	"context"
	"fmt"
	"io"
)

// Backend types accepted by Open.
const (
	TypeMemory   = "memory"
	TypeLocalFS  = "localfs"
	TypeS3       = "s3"
	TypePostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Type          string
	Path          string
	S3            S3Config
	PostgresDSN   string
	PostgresTable string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend named by opts.Type. The returned Closer releases
// backend resources and is never nil.
func Open(ctx context.Context, opts Options) (Store, io.Closer, error) {
	switch opts.Type {
	case "", TypeMemory:
		return NewMemory(), nopCloser{}, nil
	case TypeLocalFS:
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("kv: localfs requires a path")
		}
		s, err := NewLocalFS(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case TypeS3:
		if opts.S3.Bucket == "" {
			return nil, nil, fmt.Errorf("kv: s3 requires a bucket")
		}
		s, err := NewS3(opts.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case TypePostgres:
		if opts.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("kv: postgres requires a dsn")
		}
		s, err := NewPostgres(ctx, opts.PostgresDSN, opts.PostgresTable)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("kv: unknown storage type %q", opts.Type)
	}
}
