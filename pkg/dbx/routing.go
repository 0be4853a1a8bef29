package dbx

import (
	"fmt"
	"strings"
)

// RoutingPolicy picks the pool a call acquires its connection from.
type RoutingPolicy interface {
	Route(readOnly, transactional, hasReplica bool) Role
}

// RoutingFunc adapts a function to RoutingPolicy.
type RoutingFunc func(readOnly, transactional, hasReplica bool) Role

func (f RoutingFunc) Route(readOnly, transactional, hasReplica bool) Role {
	return f(readOnly, transactional, hasReplica)
}

// ReplicaReads sends every read-only call, query or transaction, to the replica when one
// is configured. A Transaction with readOnly set therefore leaves the primary; use
// PrimaryTransactions when every transaction must run on the primary.
var ReplicaReads RoutingPolicy = RoutingFunc(func(readOnly, _ bool, hasReplica bool) Role {
	if readOnly && hasReplica {
		return RoleReplica
	}

	return RolePrimary
})

// PrimaryTransactions keeps every transaction on the primary, only read-only queries go to
// the replica.
var PrimaryTransactions RoutingPolicy = RoutingFunc(func(readOnly, transactional, hasReplica bool) Role {
	if readOnly && !transactional && hasReplica {
		return RoleReplica
	}

	return RolePrimary
})

// ParseRoutingPolicy maps the `routing` configuration value to a policy. Empty means
// ReplicaReads.
func ParseRoutingPolicy(name string) (RoutingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "replica-reads":
		return ReplicaReads, nil
	case "primary-transactions":
		return PrimaryTransactions, nil
	default:
		return nil, fmt.Errorf("unknown routing policy %q", name)
	}
}
