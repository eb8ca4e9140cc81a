// Package integration runs the repositories and the HTTP API against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/config"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/logger"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/migration"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testDBName     = "pfo_test"
	testDBUser     = "pfo"
	testDBPassword = "pfo"
)

// TestDB is a migrated PostgreSQL owned by one test
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// NewTestDB starts PostgreSQL in a container, connects through the
// application's database layer and applies the embedded migrations.
// Skipped with -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}

	// TEST_DB_DEBUG=1 prints every statement with its parameters
	level, log := gormlogger.Silent, zap.NewNop()
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level, log = gormlogger.Info, zaptest.NewLogger(t)
	}
	db, err := persistence.NewDatabaseWithLogger(cfg,
		logger.NewGormLogger(log, level, logger.WithQueryParams(true)))
	require.NoError(t, err, "connect to postgres")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, "", zaptest.NewLogger(t))
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")

	return &TestDB{Database: db, t: t}
}

// CleanTables empties every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	err := tdb.DB.Exec("TRUNCATE TABLE invoice_items, invoices, estate_entries, estates, clients CASCADE").Error
	require.NoError(tdb.t, err, "truncate tables")
}
