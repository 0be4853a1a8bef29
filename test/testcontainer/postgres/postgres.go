package postgres

import (
	"context"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/test"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresContainerImage = "docker.io/postgres:16-alpine"
	postgresContainerPort  = "5432/tcp"

	MainDbName     = "main-db"
	MainDbUser     = "postgres"
	MainDbPassword = "password"

	TestSnapshotId = "test-snapshot"
)

// PostgresContainer represents the postgres Container type used in the module.
type PostgresContainer struct {
	Container  *postgres.PostgresContainer
	MappedPort nat.Port
	Host       string
	DbName     string
	DbUser     string
	DbPassword string
}

// StartPostgresContainer starts PostgreSQL with the EVENT_LOG schema.
func StartPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	return StartPostgresContainerWithInitScript(ctx, t, filepath.Join("test/testcontainer/postgres", "init_schema.sql"))
}

// StartPostgresContainerWithInitScript starts PostgreSQL running the given script, the path is
// relative to the project root.
func StartPostgresContainerWithInitScript(ctx context.Context, t *testing.T, initScriptPath string) *PostgresContainer {
	test.ConfigTestRootPath()

	pg, err := postgres.Run(ctx,
		postgresContainerImage,
		postgres.WithInitScripts(filepath.Clean(initScriptPath)),
		postgres.WithDatabase(MainDbName),
		postgres.WithUsername(MainDbUser),
		postgres.WithPassword(MainDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	require.NotNil(t, pg)

	mappedPort, err := pg.MappedPort(ctx, postgresContainerPort)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	log.Printf("Postgres running at %s:%s", host, mappedPort.Port())

	// Create a snapshot of the database to restore later
	err = pg.Snapshot(ctx, postgres.WithSnapshotName(TestSnapshotId))
	require.NoError(t, err)

	return &PostgresContainer{
		Container:  pg,
		MappedPort: mappedPort,
		Host:       host,
		DbName:     MainDbName,
		DbUser:     MainDbUser,
		DbPassword: MainDbPassword,
	}
}

// ConnConfig returns the superuser configuration with the given pool ceiling.
func (c *PostgresContainer) ConnConfig(poolLimit int) dbx.ConnConfig {
	return dbx.ConnConfig{
		Host:                c.Host,
		Port:                c.MappedPort.Int(),
		User:                c.DbUser,
		Password:            c.DbPassword,
		DBName:              c.DbName,
		PoolLimit:           poolLimit,
		ConnectionTimeoutMs: 5000,
	}
}

// ReplicaSetConfig points both primary and replica at the container.
func (c *PostgresContainer) ReplicaSetConfig(poolLimit int) dbx.ReplicaSetConfig {
	replica := c.ConnConfig(1)

	return dbx.ReplicaSetConfig{
		Driver: dbx.DriverPostgres,
		Master: c.ConnConfig(poolLimit),
		Slave:  &replica,
	}
}

// Restore resets the database to the snapshot taken at startup.
func (c *PostgresContainer) Restore(ctx context.Context, t *testing.T) {
	require.NoError(t, c.Container.Restore(ctx, postgres.WithSnapshotName(TestSnapshotId)))
}

func (c *PostgresContainer) StopContainer(ctx context.Context, t *testing.T) {
	timeout := 3 * time.Second
	require.NoError(t, c.Container.Stop(ctx, &timeout), "error stopping the Container")
	require.NoError(t, c.Container.Terminate(ctx))
}
