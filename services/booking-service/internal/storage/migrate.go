package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/md-rashed-zaman/apptbook/libs/db"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the appointments schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *db.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
