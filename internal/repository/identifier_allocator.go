package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/idgen"
)

type nextValFunc func(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error)

// IdentifierAllocator mints prefixed labels (S001, U002, ...) from database
// sequences. Sequence values are never handed out twice, so concurrent
// callers cannot collide; rolled back transactions simply leave gaps.
type IdentifierAllocator struct {
	nextVal nextValFunc
}

// NewIdentifierAllocator constructs an allocator backed by Postgres sequences.
func NewIdentifierAllocator() *IdentifierAllocator {
	return &IdentifierAllocator{nextVal: postgresNextVal}
}

// Next draws the next label for kind using q, which may be a transaction.
func (a *IdentifierAllocator) Next(ctx context.Context, q sqlx.QueryerContext, kind models.IDKind) (string, error) {
	n, err := a.nextVal(ctx, q, kind.Sequence)
	if err != nil {
		return "", fmt.Errorf("allocate %s id: %w", kind.Prefix, err)
	}
	return idgen.Format(kind.Prefix, n), nil
}

func postgresNextVal(ctx context.Context, q sqlx.QueryerContext, sequence string) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, `SELECT nextval($1::regclass)`, sequence); err != nil {
		return 0, err
	}
	return n, nil
}
