package dbx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_ChecksBothPools(t *testing.T) {
	rec := &recorder{}
	primary := newFakePool(rec, dbx.RolePrimary, 1)
	replica := newFakePool(rec, dbx.RoleReplica, 1)

	db, err := dbx.Initialize[*fakeConn](context.Background(), "orders", primary, replica, logx.NopLogger{})

	require.NoError(t, err)
	assert.Equal(t, "orders", db.Name())
	assert.True(t, db.HasReplica())
	assert.Equal(t, 1, rec.count("acquire:primary"))
	assert.Equal(t, 1, rec.count("acquire:replica"))
	assert.True(t, primary.balanced())
	assert.True(t, replica.balanced())
}

func TestInitialize_Failures(t *testing.T) {
	tests := []struct {
		name     string
		primary  *fakeConn
		replica  *fakeConn
		acqErr   error
		minMajor int
	}{
		{name: "primary too old", primary: &fakeConn{version: "4.1.22"}},
		{name: "replica too old", replica: &fakeConn{version: "4.0.1-log"}},
		{name: "unparsable version", primary: &fakeConn{version: "MariaDB"}},
		{name: "version query fails", primary: &fakeConn{versionErr: errors.New("gone away")}},
		{name: "primary unreachable", acqErr: errorx.NewConnectFailedError(errors.New("refused"), "acquire")},
		{name: "custom minimum", primary: &fakeConn{version: "8.0.36"}, minMajor: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			primary := newFakePool(rec, dbx.RolePrimary, 1)
			replica := newFakePool(rec, dbx.RoleReplica, 1)
			if tt.primary != nil {
				primary.push(tt.primary)
			}
			if tt.replica != nil {
				replica.push(tt.replica)
			}
			if tt.acqErr != nil {
				primary.acquireErrs = []error{tt.acqErr}
			}

			var opts []dbx.Option
			if tt.minMajor > 0 {
				opts = append(opts, dbx.WithMinServerMajor(tt.minMajor))
			}

			db, err := dbx.Initialize[*fakeConn](context.Background(), "orders", primary, replica, logx.NopLogger{}, opts...)

			require.Nil(t, db)
			var initErr *errorx.InitializationError
			require.ErrorAs(t, err, &initErr)
			assert.Equal(t, "orders", initErr.Database())
			assert.Equal(t, errorx.CodeInitFailed, initErr.Code())
			assert.Equal(t, 1, primary.shutdowns, "pools are shut down on failure")
			assert.Equal(t, 1, replica.shutdowns)
			assert.True(t, primary.balanced())
			assert.True(t, replica.balanced())
		})
	}
}

func TestInitialize_AcceptsVersionFormats(t *testing.T) {
	for _, v := range []string{"5.7.44-google-log", "8.0.36", "10.11.6-MariaDB-1:10.11.6+maria~ubu2204"} {
		rec := &recorder{}
		primary := newFakePool(rec, dbx.RolePrimary, 1)
		primary.push(&fakeConn{version: v})

		_, err := dbx.Initialize[*fakeConn](context.Background(), "orders", primary, nil, nil)
		assert.NoError(t, err, v)
	}
}

func TestTerminate_Idempotent(t *testing.T) {
	f := newFixture(t, 1, 1)

	f.db.Terminate()
	f.db.Terminate()

	assert.Equal(t, 1, f.primary.shutdowns)
	assert.Equal(t, 1, f.replica.shutdowns)
}

func TestStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := newFixture(t, 1, 1)

		h := f.db.Status(context.Background())

		assert.Equal(t, dbx.Health{Database: "orders", Primary: "writable", Replica: "reachable", Healthy: true}, h)
		assert.True(t, f.balanced())
	})

	t.Run("primary read-only", func(t *testing.T) {
		f := newFixture(t, 1, 0)
		f.primary.push(&fakeConn{id: 1, flags: []string{"ON"}})

		h := f.db.Status(context.Background())

		assert.False(t, h.Healthy)
		assert.Equal(t, "read-only", h.Primary)
		assert.Empty(t, h.Replica)
		assert.Equal(t, 1, f.rec.count("destroy:primary#1"))
	})

	t.Run("replica unreachable", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		f.replica.acquireErrs = []error{errorx.NewPoolExhaustedError(context.DeadlineExceeded, "acquire")}

		h := f.db.Status(context.Background())

		assert.False(t, h.Healthy)
		assert.Equal(t, "writable", h.Primary)
		assert.Equal(t, "unreachable", h.Replica)
		assert.NotEmpty(t, h.Error)
	})
}

func TestProbeWritable(t *testing.T) {
	tests := []struct {
		name  string
		conn  *fakeConn
		want  dbx.WritableStatus
		isErr error
	}{
		{"off", &fakeConn{flags: []string{"OFF"}}, dbx.StatusWritable, nil},
		{"on", &fakeConn{flags: []string{"ON"}}, dbx.StatusReadOnly, dbx.ErrReadOnlyCandidate},
		{"lowercase on", &fakeConn{flags: []string{"on"}}, dbx.StatusReadOnly, dbx.ErrReadOnlyCandidate},
		{"no rows", &fakeConn{flags: []string{}}, dbx.StatusInvalid, dbx.ErrIndeterminateProbe},
		{"two rows", &fakeConn{flags: []string{"OFF", "ON"}}, dbx.StatusInvalid, dbx.ErrIndeterminateProbe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.conn.rec = &recorder{}
			got, err := dbx.ProbeWritable(context.Background(), tt.conn)

			assert.Equal(t, tt.want, got)
			if tt.isErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.isErr)
			}
		})
	}

	t.Run("query error", func(t *testing.T) {
		probeErr := errors.New("timeout")
		got, err := dbx.ProbeWritable(context.Background(), &fakeConn{rec: &recorder{}, flagsErr: probeErr})
		assert.Equal(t, dbx.StatusInvalid, got)
		assert.ErrorIs(t, err, probeErr)
	})
}
