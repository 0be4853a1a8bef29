package dbx_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
	"github.com/stretchr/testify/require"
)

// recorder collects the ordered events of fake pools and connections.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.all() {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) index(event string) int {
	for i, e := range r.all() {
		if e == event {
			return i
		}
	}
	return -1
}

// fakeConn is a scripted connection. The zero value is a writable MySQL 8 connection.
type fakeConn struct {
	id          int
	rec         *recorder
	flags       []string
	flagsErr    error
	version     string
	versionErr  error
	beginErr    error
	commitErr   error
	rollbackErr error
	// opErr is returned by testOp when run on this connection.
	opErr   error
	opPanic any
}

func (c *fakeConn) Begin(context.Context) error {
	c.rec.add("begin#%d", c.id)
	return c.beginErr
}

func (c *fakeConn) Commit(context.Context) error {
	c.rec.add("commit#%d", c.id)
	return c.commitErr
}

func (c *fakeConn) Rollback(context.Context) error {
	c.rec.add("rollback#%d", c.id)
	return c.rollbackErr
}

func (c *fakeConn) ReadOnlyFlags(context.Context) ([]string, error) {
	c.rec.add("probe#%d", c.id)
	if c.flagsErr != nil {
		return nil, c.flagsErr
	}
	if c.flags == nil {
		return []string{"OFF"}, nil
	}
	return c.flags, nil
}

func (c *fakeConn) ServerVersion(context.Context) (string, error) {
	if c.versionErr != nil {
		return "", c.versionErr
	}
	if c.version == "" {
		return "8.0.36", nil
	}
	return c.version, nil
}

// fakePool hands out scripted connections first, then fresh writable ones.
type fakePool struct {
	mu          sync.Mutex
	role        dbx.Role
	cfg         dbx.ConnConfig
	rec         *recorder
	queue       []*fakeConn
	acquireErrs []error
	nextID      int
	acquired    int
	released    int
	destroyed   int
	shutdowns   int
}

func newFakePool(rec *recorder, role dbx.Role, limit int) *fakePool {
	return &fakePool{
		role:   role,
		rec:    rec,
		cfg:    dbx.ConnConfig{Host: string(role), Port: 3306, User: "app", DBName: "orders", PoolLimit: limit},
		nextID: 100,
	}
}

func (p *fakePool) push(conns ...*fakeConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range conns {
		c.rec = p.rec
	}
	p.queue = append(p.queue, conns...)
}

func (p *fakePool) Acquire(context.Context) (*fakeConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rec.add("acquire:%s", p.role)
	if len(p.acquireErrs) > 0 {
		err := p.acquireErrs[0]
		p.acquireErrs = p.acquireErrs[1:]
		return nil, err
	}

	p.acquired++
	if len(p.queue) > 0 {
		c := p.queue[0]
		p.queue = p.queue[1:]
		return c, nil
	}

	p.nextID++
	return &fakeConn{id: p.nextID, rec: p.rec}, nil
}

func (p *fakePool) Release(c *fakeConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
	p.rec.add("release:%s#%d", p.role, c.id)
}

func (p *fakePool) Destroy(c *fakeConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyed++
	p.rec.add("destroy:%s#%d", p.role, c.id)
}

func (p *fakePool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdowns++
}

func (p *fakePool) Config() dbx.ConnConfig { return p.cfg }

func (p *fakePool) Role() dbx.Role { return p.role }

// balanced reports whether every acquired connection was released or destroyed.
func (p *fakePool) balanced() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired == p.released+p.destroyed
}

type fixture struct {
	rec     *recorder
	primary *fakePool
	replica *fakePool
	db      *dbx.Database[*fakeConn]
	sink    *recordingSink
}

// newFixture builds an initialized Database; replicaLimit 0 means no replica.
func newFixture(t *testing.T, primaryLimit, replicaLimit int, opts ...dbx.Option) *fixture {
	t.Helper()

	f := &fixture{rec: &recorder{}, sink: &recordingSink{}}
	f.primary = newFakePool(f.rec, dbx.RolePrimary, primaryLimit)

	var replica dbx.Pool[*fakeConn]
	if replicaLimit > 0 {
		f.replica = newFakePool(f.rec, dbx.RoleReplica, replicaLimit)
		replica = f.replica
	}

	opts = append([]dbx.Option{dbx.WithEventSink(f.sink)}, opts...)
	db, err := dbx.Initialize[*fakeConn](context.Background(), "orders", f.primary, replica, logx.NopLogger{}, opts...)
	require.NoError(t, err)

	f.db = db
	f.rec.reset()

	return f
}

func (f *fixture) balanced() bool {
	return f.primary.balanced() && (f.replica == nil || f.replica.balanced())
}

// testOp records the connection it runs on and returns the connection's scripted outcome.
func testOp(rec *recorder) dbx.Operation[*fakeConn, string] {
	return func(_ context.Context, conn *fakeConn) (string, error) {
		rec.add("op#%d", conn.id)
		if conn.opPanic != nil {
			panic(conn.opPanic)
		}
		if conn.opErr != nil {
			return "", conn.opErr
		}
		return fmt.Sprintf("ok#%d", conn.id), nil
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []dbx.FailoverEvent
}

func (s *recordingSink) PublishFailover(_ context.Context, event dbx.FailoverEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) all() []dbx.FailoverEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dbx.FailoverEvent(nil), s.events...)
}

func readOnlyErr() *dbx.DriverError {
	return &dbx.DriverError{Kind: dbx.KindReadOnly, Code: "ER_OPTION_PREVENTS_STATEMENT", Number: 1290, State: "HY000",
		SQL: "UPDATE orders SET status = ?", Message: "The MySQL server is running with the --read-only option"}
}

func lockErr() *dbx.DriverError {
	return &dbx.DriverError{Kind: dbx.KindLockFailed, Code: "ER_CANT_LOCK", Number: 1015, State: "HY000",
		SQL: "SELECT * FROM orders FOR UPDATE", Message: "Can't lock file"}
}
