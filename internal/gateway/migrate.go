package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// RunMigrations finds all "*.up.sql" files under migrationsPath (sorted by
// name) and executes their contents in order, returning on the first failure.
// "*.down.sql" files are ignored.
func (g *pgGateway) RunMigrations(migrationsPath string) error {
	if g.db == nil {
		return fmt.Errorf("gateway not configured")
	}

	pattern := filepath.Join(migrationsPath, "*.up.sql")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob migrations: %w", err)
	}
	if len(files) == 0 {
		return nil
	}
	sort.Strings(files)

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration %q: %w", file, err)
		}
		if len(sqlBytes) == 0 {
			continue
		}
		if _, err := g.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("error executing migration %q: %w", file, err)
		}
		log.Info().Str("file", filepath.Base(file)).Msg("applied migration")
	}
	return nil
}

// Migrator is implemented by gateways backed by a real database.
type Migrator interface {
	RunMigrations(migrationsPath string) error
}
