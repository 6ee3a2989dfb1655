package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backup writes a consistent snapshot of the database into dir via VACUUM
// INTO, which is safe while the database is in WAL mode. Returns the path of
// the written file and its size in bytes.
func (s *Store) Backup(ctx context.Context, dir string) (string, int64, error) {
	if err := s.ready(); err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("nextgenfitness_backup_%s.db", time.Now().Format("20060102_150405"))
	dest := filepath.Join(dir, name)

	// VACUUM INTO refuses to overwrite, so a leftover file from the same
	// second surfaces as an error instead of a corrupt backup.
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return "", 0, fmt.Errorf("failed to back up database: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat backup file: %w", err)
	}

	return dest, info.Size(), nil
}
