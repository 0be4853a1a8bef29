package mysql

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mysqlContainerImage = "docker.io/mysql:8.0"
	mysqlContainerPort  = "3306/tcp"

	MainDbName       = "orders"
	MainDbUser       = "app"
	MainDbPassword   = "password"
	MainRootPassword = "root-password"
)

// MySQLContainer represents the mysql Container type used in the module.
type MySQLContainer struct {
	Container    testcontainers.Container
	MappedPort   nat.Port
	Host         string
	DbName       string
	DbUser       string
	DbPassword   string
	RootPassword string
}

// StartMySQLContainer starts a MySQL 8 server with an application user that has no SUPER
// privilege, so that `SET GLOBAL read_only = ON` blocks its writes.
func StartMySQLContainer(ctx context.Context, t *testing.T) *MySQLContainer {
	req := testcontainers.ContainerRequest{
		Image:        mysqlContainerImage,
		ExposedPorts: []string{mysqlContainerPort},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": MainRootPassword,
			"MYSQL_DATABASE":      MainDbName,
			"MYSQL_USER":          MainDbUser,
			"MYSQL_PASSWORD":      MainDbPassword,
		},
		// the init phase runs a temporary server on port 0, wait for the real one
		WaitingFor: wait.ForAll(
			wait.ForLog("port: 3306  MySQL Community Server"),
			wait.ForListeningPort(mysqlContainerPort),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	require.NotNil(t, container)

	mappedPort, err := container.MappedPort(ctx, mysqlContainerPort)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	log.Printf("MySQL running at %s:%s", host, mappedPort.Port())

	return &MySQLContainer{
		Container:    container,
		MappedPort:   mappedPort,
		Host:         host,
		DbName:       MainDbName,
		DbUser:       MainDbUser,
		DbPassword:   MainDbPassword,
		RootPassword: MainRootPassword,
	}
}

// ConnConfig returns the application user configuration with the given pool ceiling.
func (c *MySQLContainer) ConnConfig(poolLimit int) dbx.ConnConfig {
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

// RootConnConfig returns the root user configuration, used to flip server variables.
func (c *MySQLContainer) RootConnConfig() dbx.ConnConfig {
	cfg := c.ConnConfig(1)
	cfg.User = "root"
	cfg.Password = c.RootPassword

	return cfg
}

// ReplicaSetConfig points both primary and replica at the container.
func (c *MySQLContainer) ReplicaSetConfig(poolLimit int) dbx.ReplicaSetConfig {
	replica := c.ConnConfig(1)

	return dbx.ReplicaSetConfig{
		Driver: dbx.DriverMySQL,
		Master: c.ConnConfig(poolLimit),
		Slave:  &replica,
	}
}

func (c *MySQLContainer) StopContainer(ctx context.Context, t *testing.T) {
	timeout := 3 * time.Second
	require.NoError(t, c.Container.Stop(ctx, &timeout), "error stopping the Container")
	require.NoError(t, c.Container.Terminate(ctx))
}
