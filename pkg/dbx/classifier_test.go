package dbx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want dbx.Classification
	}{
		{"read-only", readOnlyErr(), dbx.ClassFailover},
		{"lock failed", lockErr(), dbx.ClassFailover},
		{"connection lost", &dbx.DriverError{Kind: dbx.KindConnectionLost}, dbx.ClassFailover},
		{"connection reset", &dbx.DriverError{Kind: dbx.KindConnectionReset}, dbx.ClassFailover},
		{"wrapped read-only", fmt.Errorf("update order: %w", readOnlyErr()), dbx.ClassFailover},
		{"joined read-only", errors.Join(errors.New("update orders"), readOnlyErr()), dbx.ClassFailover},
		{"multi-wrapped lock failure", fmt.Errorf("%w; %w", errors.New("select for update"), lockErr()), dbx.ClassFailover},
		{"joined statement first", errors.Join(&dbx.DriverError{Kind: dbx.KindStatement, Code: "ER_DUP_ENTRY"}, readOnlyErr()), dbx.ClassTerminal},
		{"joined classified first", errors.Join(errorx.NewClassifiedError("X", "c", nil, "x"), readOnlyErr()), dbx.ClassPassThrough},
		{"statement", &dbx.DriverError{Kind: dbx.KindStatement, Code: "ER_DUP_ENTRY", Number: 1062}, dbx.ClassTerminal},
		{"plain", errors.New("boom"), dbx.ClassTerminal},
		{"classified", errorx.NewClassifiedError("X", "c", nil, "x"), dbx.ClassPassThrough},
		{"classified over read-only", errorx.NewClassifiedError("X", "c", readOnlyErr(), "x"), dbx.ClassPassThrough},
		{"no available connection", errorx.NewNoAvailableConnectionError("orders", "c", 1, readOnlyErr()), dbx.ClassPassThrough},
		{"nil", nil, dbx.ClassTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dbx.Classify(tt.err))
		})
	}
}

func TestParseRoutingPolicy(t *testing.T) {
	p, err := dbx.ParseRoutingPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, dbx.RoleReplica, p.Route(true, true, true))

	p, err = dbx.ParseRoutingPolicy("Primary-Transactions")
	assert.NoError(t, err)
	assert.Equal(t, dbx.RolePrimary, p.Route(true, true, true))

	_, err = dbx.ParseRoutingPolicy("round-robin")
	assert.Error(t, err)
}

func TestConnConfigDefaults(t *testing.T) {
	cfg := dbx.ConnConfig{Host: "10.0.0.1", Port: 3306, User: "app", Password: "secret", DBName: "orders"}

	assert.Equal(t, 1, cfg.MaxConn())
	assert.Equal(t, int64(8000), cfg.ConnectTimeout().Milliseconds())
	assert.Equal(t, int64(5000), cfg.KeepAlive().Milliseconds())
	assert.Equal(t, int64(60000), cfg.IdleTimeout().Milliseconds())
	assert.Equal(t, "app@10.0.0.1:3306/orders", cfg.String())
	assert.NotContains(t, cfg.String(), "secret")
}

func TestReplicaSetConfigValidate(t *testing.T) {
	valid := dbx.ReplicaSetConfig{Master: dbx.ConnConfig{Host: "h", Port: 3306, User: "u", DBName: "d"}}
	assert.NoError(t, valid.Validate("orders"))
	assert.Equal(t, dbx.DriverMySQL, valid.DriverName())

	badSlave := valid
	badSlave.Slave = &dbx.ConnConfig{Host: "r"}
	assert.Error(t, badSlave.Validate("orders"))

	badDriver := valid
	badDriver.Driver = "oracle"
	assert.Error(t, badDriver.Validate("orders"))

	badRouting := valid
	badRouting.Routing = "random"
	assert.Error(t, badRouting.Validate("orders"))

	assert.Error(t, dbx.ReplicaSetConfig{}.Validate("orders"))
}
