package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	embeddedmigrations "github.com/terraincognita07/nyinsen/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nested", "nyinsen-clean.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertTableColumns(t, database, "users", "email", "password_hash", "must_change_password", "cycle_length", "period_length", "last_period_start")
	assertTableColumns(t, database, "cycle_logs", "log_type", "is_period", "flow", "symptoms", "mood", "temperature", "notes")
	assertTableColumns(t, database, "profiles", "full_name", "phone", "is_pregnant", "pregnancy_lmp")
	assertTableColumns(t, database, "emergency_contacts", "is_primary", "priority")
	assertTableColumns(t, database, "healthcare_professionals", "specialization", "emergency_phone", "license_number", "facility_id", "is_primary")
	assertTableColumns(t, database, "risk_alerts", "alert_type", "severity", "notifications_sent", "acknowledged_at", "resolved_at")
	assertTableColumns(t, database, "notification_logs", "alert_id", "recipient_type", "method", "status")
	assertTableColumns(t, database, "chat_messages", "request_id", "role", "language", "content")
	assertNormalizedEmailIndexExists(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestOpenSQLiteReplaysAddColumnOnPrecreatedProfiles(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nyinsen-partial.db")
	seedPartiallyMigratedSchema(t, databasePath)

	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertTableColumns(t, database, "profiles", "is_pregnant", "pregnancy_lmp")
	assertAllEmbeddedMigrationsApplied(t, database)

	var profile struct {
		FullName   string `gorm:"column:full_name"`
		IsPregnant bool   `gorm:"column:is_pregnant"`
	}
	if err := database.Table("profiles").Select("full_name", "is_pregnant").First(&profile).Error; err != nil {
		t.Fatalf("load seeded profile: %v", err)
	}
	if profile.FullName != "Ama Mensah" || !profile.IsPregnant {
		t.Fatalf("expected seeded profile to survive migration, got %#v", profile)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nyinsen-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForMigrationBootstrapTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}

	applied, err := ApplyMigrations(secondOpen)
	if err != nil {
		t.Fatalf("apply migrations again: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no pending migrations, got %v", applied)
	}
}

func TestLoadEmbeddedMigrationsOrdersByNumericVersion(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"10_later.sql":   {Data: []byte("SELECT 10")},
		"2_earlier.sql":  {Data: []byte("SELECT 2")},
		"README.md":      {Data: []byte("ignored")},
		"003_middle.sql": {Data: []byte("SELECT 3")},
	}

	migrations, err := loadEmbeddedMigrations(files)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}

	names := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		names = append(names, migration.Name)
	}
	expected := []string{"2_earlier.sql", "003_middle.sql", "10_later.sql"}
	if !reflect.DeepEqual(expected, names) {
		t.Fatalf("expected order %v, got %v", expected, names)
	}
}

func TestLoadEmbeddedMigrationsRejectsDuplicateVersions(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1")},
		"0001_b.sql": {Data: []byte("SELECT 1")},
	}
	if _, err := loadEmbeddedMigrations(files); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestSplitSQLStatementsDropsEmptyParts(t *testing.T) {
	t.Parallel()

	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX i ON a(id);  ")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
}

func openSQLiteForMigrationBootstrapTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

func TestApplyMigrationsBackfillsMissingChecksums(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nyinsen-backfill.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	if err := database.Exec(`UPDATE schema_migrations SET checksum = NULL WHERE version = '0001'`).Error; err != nil {
		t.Fatalf("clear checksum: %v", err)
	}
	if _, err := ApplyMigrations(database); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	migrations, err := loadEmbeddedMigrations(embeddedmigrations.Files)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	var stored string
	if err := database.Raw(`SELECT checksum FROM schema_migrations WHERE version = '0001'`).Scan(&stored).Error; err != nil {
		t.Fatalf("load checksum: %v", err)
	}
	if stored != migrations[0].Checksum {
		t.Fatalf("expected backfilled checksum %q, got %q", migrations[0].Checksum, stored)
	}
}

func TestApplyMigrationsRejectsModifiedMigration(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nyinsen-drift.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	if err := database.Exec(`UPDATE schema_migrations SET checksum = 'stale' WHERE version = '0002'`).Error; err != nil {
		t.Fatalf("overwrite checksum: %v", err)
	}
	_, err := ApplyMigrations(database)
	if !errors.Is(err, ErrMigrationModified) {
		t.Fatalf("expected ErrMigrationModified, got %v", err)
	}
	if !strings.Contains(err.Error(), "0002_profiles_and_contacts.sql") {
		t.Fatalf("expected error to name the migration, got %v", err)
	}
}

func TestEnsureSchemaMigrationsTableAddsChecksumToLegacyTable(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "nyinsen-legacy.db")
	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	legacy := `CREATE TABLE schema_migrations (version TEXT PRIMARY KEY, name TEXT NOT NULL, applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP)`
	if err := database.Exec(legacy).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	if err := ensureSchemaMigrationsTable(database); err != nil {
		t.Fatalf("ensure schema_migrations: %v", err)
	}
	assertTableColumns(t, database, "schema_migrations", "version", "name", "checksum", "applied_at")
}

// seedPartiallyMigratedSchema records 0001 and 0002 as applied while the
// profiles table already carries the columns that 0003 adds.
func seedPartiallyMigratedSchema(t *testing.T, databasePath string) {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)", databasePath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open seed sqlite: %v", err)
	}
	if err := ensureSchemaMigrationsTable(database); err != nil {
		t.Fatalf("create schema_migrations: %v", err)
	}

	migrations, err := loadEmbeddedMigrations(embeddedmigrations.Files)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	for _, migration := range migrations[:1] {
		if err := applyMigration(database, migration); err != nil {
			t.Fatalf("apply %s: %v", migration.Name, err)
		}
	}

	statements := []string{
		`CREATE TABLE profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  full_name TEXT,
  phone TEXT,
  age INTEGER,
  location TEXT,
  emergency_contact_name TEXT,
  emergency_contact_phone TEXT,
  medical_conditions TEXT,
  is_pregnant NUMERIC NOT NULL DEFAULT 0,
  pregnancy_lmp DATE,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE TABLE emergency_contacts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  relationship TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  address TEXT,
  is_primary NUMERIC NOT NULL DEFAULT 0,
  priority INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`INSERT INTO users (email, password_hash, created_at) VALUES ('seed@example.com', 'hash', CURRENT_TIMESTAMP)`,
		`INSERT INTO profiles (user_id, full_name, is_pregnant) VALUES (1, 'Ama Mensah', 1)`,
		`INSERT INTO schema_migrations(version, name) VALUES ('0002', '0002_profiles_and_contacts.sql')`,
	}
	for _, statement := range statements {
		if err := database.Exec(statement).Error; err != nil {
			t.Fatalf("seed statement %q: %v", statement, err)
		}
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open seed sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close seed sql db: %v", err)
	}
}

func assertTableColumns(t *testing.T, database *gorm.DB, tableName string, expected ...string) {
	t.Helper()

	columns := loadTableColumns(t, database, tableName)
	for _, column := range expected {
		if _, exists := columns[column]; !exists {
			t.Fatalf("expected %s.%s column to exist after migrations", tableName, column)
		}
	}
}

func assertNormalizedEmailIndexExists(t *testing.T, database *gorm.DB) {
	t.Helper()

	indexSQL := loadSQLiteObjectSQL(t, database, "index", "idx_users_email_normalized")
	definition := strings.ToLower(strings.Join(strings.Fields(indexSQL), ""))
	if definition == "" {
		t.Fatal("expected normalized email index definition to exist")
	}
	if !strings.Contains(definition, "lower(trim(email))") {
		t.Fatalf("expected normalized email index to use lower(trim(email)), got %q", indexSQL)
	}
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	expectedVersions := embeddedMigrationVersionsForTest(t)
	actualVersions := make([]string, 0)
	for _, record := range loadMigrationRecords(t, database) {
		actualVersions = append(actualVersions, record.Version)
	}

	if !reflect.DeepEqual(expectedVersions, actualVersions) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expectedVersions, actualVersions)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(tableName, `"`, `""`))

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(strings.TrimSpace(row.Name))] = struct{}{}
	}
	return columns
}

func loadSQLiteObjectSQL(t *testing.T, database *gorm.DB, objectType string, objectName string) string {
	t.Helper()

	var row struct {
		SQL string `gorm:"column:sql"`
	}
	if err := database.Raw(
		`SELECT sql FROM sqlite_master WHERE type = ? AND name = ?`,
		objectType,
		objectName,
	).Scan(&row).Error; err != nil {
		t.Fatalf("load sqlite master sql for %s %s: %v", objectType, objectName, err)
	}
	return row.SQL
}

func embeddedMigrationVersionsForTest(t *testing.T) []string {
	t.Helper()

	migrations, err := loadEmbeddedMigrations(embeddedmigrations.Files)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}

	versions := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		versions = append(versions, migration.Version)
	}
	return versions
}
