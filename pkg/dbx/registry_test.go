package dbx_test

import (
	"context"
	"testing"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	name       string
	health     dbx.Health
	terminated int
}

func (s *stubHandle) Name() string { return s.name }

func (s *stubHandle) Status(context.Context) dbx.Health { return s.health }

func (s *stubHandle) Terminate() { s.terminated++ }

func TestRegistry(t *testing.T) {
	r := dbx.NewRegistry()
	users := &stubHandle{name: "users", health: dbx.Health{Database: "users", Healthy: true}}
	billing := &stubHandle{name: "billing", health: dbx.Health{Database: "billing"}}

	require.NoError(t, r.Add(users))
	require.NoError(t, r.Add(billing))
	assert.Error(t, r.Add(&stubHandle{name: "users"}), "duplicate names are rejected")

	assert.Equal(t, []string{"billing", "users"}, r.Names())

	h, ok := r.Get("users")
	require.True(t, ok)
	assert.Same(t, users, h)

	statuses, err := r.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dbx.Health{billing.health, users.health}, statuses)

	r.TerminateAll()
	assert.Equal(t, 1, users.terminated)
	assert.Equal(t, 1, billing.terminated)
	assert.Empty(t, r.Names())
}

func TestRegistry_LookupTyped(t *testing.T) {
	f := newFixture(t, 1, 0)
	r := dbx.NewRegistry()
	require.NoError(t, r.Add(f.db))

	db, ok := dbx.Lookup[*fakeConn](r, "orders")
	require.True(t, ok)
	assert.Same(t, f.db, db)

	_, ok = dbx.Lookup[*fakeConn](r, "missing")
	assert.False(t, ok)

	statuses, err := r.Statuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Healthy)
}
