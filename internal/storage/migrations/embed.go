package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var sqlFiles embed.FS

// Migration is one embedded SQL file. Version is the file name without ".sql".
type Migration struct {
	Version string
	SQL     string
}

// Load returns the non-empty migrations for dialect ("postgres" or "clickhouse"),
// ordered by file name.
func Load(dialect string) ([]Migration, error) {
	entries, err := fs.ReadDir(sqlFiles, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}

	out := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		data, err := fs.ReadFile(sqlFiles, dialect+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Version: strings.TrimSuffix(name, ".sql"), SQL: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
