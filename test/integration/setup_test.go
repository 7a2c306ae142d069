package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hemato/consult/internal/domain/patient"
	"github.com/hemato/consult/internal/platform/db"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool          *pgxpool.Pool
	ConnStr       string
	MigrationsDir string
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	tdb, cleanup, err := setupDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
		os.Exit(1)
	}

	globalDB = tdb
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// setupDatabase starts a Postgres container, connects a pool and applies all
// migrations so tests run against the real schema.
func setupDatabase(ctx context.Context) (*testDB, func(), error) {
	migrationsDir := findMigrationsDir()

	connStr, stopContainer, err := startPostgresContainer(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		stopContainer()
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		stopContainer()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	migrator := db.NewMigrator(pool, migrationsDir)
	if _, err := migrator.Up(ctx); err != nil {
		pool.Close()
		stopContainer()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &testDB{
			Pool:          pool,
			ConnStr:       connStr,
			MigrationsDir: migrationsDir,
		}, func() {
			pool.Close()
			stopContainer()
		}, nil
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> repo root
	root := filepath.Join(dir, "..", "..")
	return filepath.Join(root, "migrations")
}

// truncateAll wipes the clinical tables between tests. Users are kept because
// some tests register accounts with unique names anyway.
func truncateAll(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := globalDB.Pool.Exec(ctx, `
		TRUNCATE alerts, patient_messages, evolutions, antibiotics, cultures,
		         patients, templates, audit_logs RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

// seedPatient inserts a minimal active patient and returns it.
func seedPatient(t *testing.T, ctx context.Context, name string) *patient.Patient {
	t.Helper()
	repo := patient.NewRepo(globalDB.Pool)
	leito := "CMM A0307"
	unidade := "Hematologia"
	p := &patient.Patient{
		Name:                   name,
		Age:                    54,
		City:                   "São Paulo",
		State:                  "SP",
		Leito:                  &leito,
		Unidade:                &unidade,
		DIH:                    time.Now().AddDate(0, 0, -10),
		HematologicalDiagnosis: "LMA",
		IsActive:               true,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

// seedPatientNoBed registers a patient before bed assignment: leito and
// unidade stay NULL, as the create endpoint allows.
func seedPatientNoBed(t *testing.T, ctx context.Context, name string) *patient.Patient {
	t.Helper()
	repo := patient.NewRepo(globalDB.Pool)
	p := &patient.Patient{
		Name:                   name,
		Age:                    61,
		City:                   "Campinas",
		State:                  "SP",
		DIH:                    time.Now().AddDate(0, 0, -3),
		HematologicalDiagnosis: "LLA",
		IsActive:               true,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func ptrStr(s string) *string { return &s }
