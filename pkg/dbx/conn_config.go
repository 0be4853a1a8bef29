package dbx

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/validator"
)

const (
	DefaultPoolLimit           = 1
	DefaultConnectionTimeoutMs = 8000
	DefaultKeepAliveMs         = 5000
	DefaultIdleTimeoutMs       = 60000
)

// Supported drivers for ReplicaSetConfig.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ConnConfig represents the configuration required for one database pool.
//
// The mapstructure keys follow the service property files:
//
//	master:
//	  ip: "10.0.0.1"
//	  port: 3306
//	  id: "app"
//	  password: "secret"
//	  database: "orders"
//	  pool_limit: 4
//	  connection_timeout_ms: 8000
//
// Zero values of the optional numeric fields mean "use the default".
type ConnConfig struct {
	Host                string `mapstructure:"ip" validate:"required"`
	Port                int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	User                string `mapstructure:"id" validate:"required"`
	Password            string `mapstructure:"password"`
	DBName              string `mapstructure:"database" validate:"required"`
	PoolLimit           int    `mapstructure:"pool_limit" validate:"min=0"`
	ConnectionTimeoutMs int    `mapstructure:"connection_timeout_ms" validate:"min=0"`
	KeepAliveMs         int    `mapstructure:"keep_alive_ms" validate:"min=0"`
	IdleTimeoutMs       int    `mapstructure:"idle_timeout_ms" validate:"min=0"`
	Timezone            string `mapstructure:"timezone"`
}

// MaxConn returns the pool ceiling, DefaultPoolLimit when unset.
func (c ConnConfig) MaxConn() int {
	if c.PoolLimit <= 0 {
		return DefaultPoolLimit
	}

	return c.PoolLimit
}

// ConnectTimeout bounds both dialing and acquisition from the pool.
func (c ConnConfig) ConnectTimeout() time.Duration {
	return millisOrDefault(c.ConnectionTimeoutMs, DefaultConnectionTimeoutMs)
}

func (c ConnConfig) KeepAlive() time.Duration {
	return millisOrDefault(c.KeepAliveMs, DefaultKeepAliveMs)
}

func (c ConnConfig) IdleTimeout() time.Duration {
	return millisOrDefault(c.IdleTimeoutMs, DefaultIdleTimeoutMs)
}

// Address returns host:port.
func (c ConnConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String never includes the password.
func (c ConnConfig) String() string {
	return fmt.Sprintf("%s@%s/%s", c.User, c.Address(), c.DBName)
}

func millisOrDefault(value, def int) time.Duration {
	if value <= 0 {
		value = def
	}

	return time.Duration(value) * time.Millisecond
}

// ReplicaSetConfig describes one logical database: a primary and an optional replica.
type ReplicaSetConfig struct {
	Driver  string      `mapstructure:"driver" validate:"omitempty,oneof=mysql postgres"`
	Master  ConnConfig  `mapstructure:"master"`
	Slave   *ConnConfig `mapstructure:"slave" validate:"omitempty"`
	Routing string      `mapstructure:"routing" validate:"omitempty,oneof=replica-reads primary-transactions"`
}

// DriverName returns the configured driver, DriverMySQL when unset.
func (c ReplicaSetConfig) DriverName() string {
	if c.Driver == "" {
		return DriverMySQL
	}

	return strings.ToLower(c.Driver)
}

// Validate checks the struct tags of the replica set.
func (c ReplicaSetConfig) Validate(name string) error {
	if errs := validator.NewValidator().ValidateStruct(c); len(errs) > 0 {
		return errorx.NewDatabaseErrorWrapper(validator.NewValidationError(errs), "[%s] invalid database configuration", name)
	}

	return nil
}
