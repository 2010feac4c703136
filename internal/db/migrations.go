package db

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/nyinsen/migrations"
	"gorm.io/gorm"
)

var (
	migrationFilePattern      = regexp.MustCompile(`^(\d+)_.*\.sql$`)
	addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
)

// ErrMigrationModified is returned when an applied migration file no longer
// matches the checksum recorded when it ran.
var ErrMigrationModified = errors.New("applied migration was modified")

type embeddedMigration struct {
	Version  string
	Order    int
	Name     string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  string  `gorm:"column:version"`
	Checksum *string `gorm:"column:checksum"`
}

// ApplyMigrations runs pending embedded migrations and returns the file names
// that were applied by this call, in order.
func ApplyMigrations(database *gorm.DB) ([]string, error) {
	return applyEmbeddedMigrations(database)
}

func applyEmbeddedMigrations(database *gorm.DB) ([]string, error) {
	if err := ensureSchemaMigrationsTable(database); err != nil {
		return nil, err
	}

	available, err := loadEmbeddedMigrations(embeddedmigrations.Files)
	if err != nil {
		return nil, err
	}
	recorded, err := loadAppliedMigrations(database)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(available))
	for _, migration := range available {
		previous, done := recorded[migration.Version]
		if !done {
			if err := applyMigration(database, migration); err != nil {
				return names, err
			}
			names = append(names, migration.Name)
			continue
		}
		if err := verifyChecksum(database, migration, previous); err != nil {
			return names, err
		}
	}
	return names, nil
}

func ensureSchemaMigrationsTable(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	hasChecksum, err := tableColumnExists(database, "schema_migrations", "checksum")
	if err != nil {
		return err
	}
	if !hasChecksum {
		if err := database.Exec(`ALTER TABLE schema_migrations ADD COLUMN checksum TEXT`).Error; err != nil {
			return fmt.Errorf("add schema_migrations.checksum: %w", err)
		}
	}
	return nil
}

func loadEmbeddedMigrations(files fs.FS) ([]embeddedMigration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]embeddedMigration, 0, len(entries))
	fileByVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(name)
		if len(matches) != 2 {
			continue
		}

		version := matches[1]
		if other, taken := fileByVersion[version]; taken {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, other, name)
		}
		fileByVersion[version] = name

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		body, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		migrations = append(migrations, embeddedMigration{
			Version:  version,
			Order:    order,
			Name:     name,
			SQL:      string(body),
			Checksum: migrationChecksum(body),
		})
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		if migrations[i].Order != migrations[j].Order {
			return migrations[i].Order < migrations[j].Order
		}
		return migrations[i].Name < migrations[j].Name
	})
	return migrations, nil
}

func migrationChecksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func loadAppliedMigrations(database *gorm.DB) (map[string]appliedMigration, error) {
	var rows []appliedMigration
	if err := database.Raw(`SELECT version, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	byVersion := make(map[string]appliedMigration, len(rows))
	for _, row := range rows {
		byVersion[row.Version] = row
	}
	return byVersion, nil
}

// verifyChecksum backfills rows recorded before checksums existed and rejects
// files whose content changed after they ran.
func verifyChecksum(database *gorm.DB, migration embeddedMigration, recorded appliedMigration) error {
	if recorded.Checksum == nil || *recorded.Checksum == "" {
		err := database.Exec(
			`UPDATE schema_migrations SET checksum = ? WHERE version = ?`,
			migration.Checksum,
			migration.Version,
		).Error
		if err != nil {
			return fmt.Errorf("record checksum for %s: %w", migration.Name, err)
		}
		return nil
	}
	if *recorded.Checksum != migration.Checksum {
		return fmt.Errorf("%w: %s", ErrMigrationModified, migration.Name)
	}
	return nil
}

func applyMigration(database *gorm.DB, migration embeddedMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			skip, err := addColumnAlreadyPresent(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if skip {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		err := tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			migration.Version,
			migration.Name,
			migration.Checksum,
		).Error
		if err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// addColumnAlreadyPresent lets ALTER TABLE ... ADD COLUMN statements be replayed
// against databases that were created from a newer CREATE TABLE.
func addColumnAlreadyPresent(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(strings.TrimSpace(statement))
	if len(matches) != 3 {
		return false, nil
	}
	return tableColumnExists(database, unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

type tableColumn struct {
	Name string `gorm:"column:name"`
}

func tableColumnExists(database *gorm.DB, table string, column string) (bool, error) {
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))

	var columns []tableColumn
	if err := database.Raw(query).Scan(&columns).Error; err != nil {
		return false, fmt.Errorf("load table_info for %s: %w", table, err)
	}
	for _, candidate := range columns {
		if strings.EqualFold(strings.TrimSpace(candidate.Name), column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
