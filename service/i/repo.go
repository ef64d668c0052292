package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
)

// ResultRepo defines the interface for archiving finished games.
type ResultRepo interface {
	// Save stores a result, replacing any record with the same ID.
	Save(ctx context.Context, result *dmn.Result) error

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int64) ([]dmn.Result, error)
}
