package test

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/eskrenkovic/migrate-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SkipInfrastructureEnv = "SKIP_INFRASTRUCTURE"

	postgresImage    = "postgres:15-alpine"
	postgresUser     = "ludo"
	postgresPassword = "ludo"
	postgresDatabase = "ludo"
)

var postgresPort = nat.Port("5432/tcp")

// LocalTestFixture is a throwaway Postgres with every migration applied.
type LocalTestFixture struct {
	container testcontainers.Container

	DatabaseURL string
	DB          *sqlx.DB
}

func NewLocalTestFixture(ctx context.Context) (*LocalTestFixture, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, err
	}

	f := &LocalTestFixture{container: container}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	f.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		postgresUser,
		postgresPassword,
		net.JoinHostPort(host, port.Port()),
		postgresDatabase,
	)

	db, err := sqlx.Connect("postgres", f.DatabaseURL)
	if err != nil {
		return nil, f.fail(ctx, err)
	}
	f.DB = db

	if err := migrate.Run(ctx, db.DB, MigrationsPath()); err != nil {
		return nil, f.fail(ctx, err)
	}

	return f, nil
}

func (f *LocalTestFixture) Stop(ctx context.Context) error {
	if f.DB != nil {
		_ = f.DB.Close()
	}

	return f.container.Terminate(ctx)
}

func (f *LocalTestFixture) fail(ctx context.Context, err error) error {
	if stopErr := f.Stop(ctx); stopErr != nil {
		return fmt.Errorf("%w (cleanup: %s)", err, stopErr)
	}
	return err
}

// MigrationsPath locates db/migrations relative to this file so tests work
// from any package directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")
}

var (
	sharedOnce sync.Once
	shared     *LocalTestFixture
	sharedErr  error
)

// Postgres returns the package-wide database, starting it on first use. The
// test is skipped under -short or when SKIP_INFRASTRUCTURE is true.
func Postgres(t *testing.T) *sqlx.DB {
	t.Helper()
	return SharedFixture(t).DB
}

func SharedFixture(t *testing.T) *LocalTestFixture {
	t.Helper()

	if testing.Short() || strings.EqualFold(os.Getenv(SkipInfrastructureEnv), "true") {
		t.Skip("skipping test that needs docker")
	}

	sharedOnce.Do(func() {
		shared, sharedErr = NewLocalTestFixture(context.Background())
	})
	require.NoError(t, sharedErr)

	return shared
}

// StopPostgres tears down the database started by Postgres, if any. Call it
// from TestMain after m.Run.
func StopPostgres() error {
	if shared == nil {
		return nil
	}
	return shared.Stop(context.Background())
}
