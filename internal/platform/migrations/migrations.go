// Package migrations applies the embedded schema migrations in order.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
)

//go:embed files/*.up.sql
var files embed.FS

// Apply executes every embedded up-migration in lexical order. Statements are
// idempotent (IF NOT EXISTS) so re-running against an existing schema is safe.
func Apply(ctx context.Context, db *sql.DB) error {
	entries, err := files.ReadDir("files")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := files.ReadFile("files/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
