package dbx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// WritableStatus is the result of probing a primary candidate.
type WritableStatus int

const (
	StatusInvalid WritableStatus = iota
	StatusReadOnly
	StatusWritable
)

func (s WritableStatus) String() string {
	switch s {
	case StatusWritable:
		return "writable"
	case StatusReadOnly:
		return "read-only"
	default:
		return "invalid"
	}
}

var (
	// ErrIndeterminateProbe - the read-only introspection did not return exactly one row.
	ErrIndeterminateProbe = errors.New("read-only probe returned an indeterminate result")
	// ErrReadOnlyCandidate - the candidate points at a demoted primary.
	ErrReadOnlyCandidate = errors.New("candidate connection is read-only")
)

// ProbeWritable checks whether conn points at a writable primary.
//
// Anything other than exactly one row is StatusInvalid, a flag equal to "ON" is
// StatusReadOnly and any other value is StatusWritable. A failing probe query is
// StatusInvalid and the error is returned alongside.
func ProbeWritable(ctx context.Context, conn Conn) (WritableStatus, error) {
	flags, err := conn.ReadOnlyFlags(ctx)
	if err != nil {
		return StatusInvalid, err
	}

	if len(flags) != 1 {
		return StatusInvalid, fmt.Errorf("%w: %d rows", ErrIndeterminateProbe, len(flags))
	}

	if strings.EqualFold(strings.TrimSpace(flags[0]), "ON") {
		return StatusReadOnly, ErrReadOnlyCandidate
	}

	return StatusWritable, nil
}

// checkReachable leases one connection from pool, verifies the server major version and
// releases it.
func checkReachable[C Conn](ctx context.Context, pool Pool[C], minMajor int) (string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return "", err
	}

	version, err := conn.ServerVersion(ctx)
	if err != nil {
		pool.Destroy(conn)
		return "", err
	}
	pool.Release(conn)

	major, err := parseMajor(version)
	if err != nil {
		return version, err
	}

	if major < minMajor {
		return version, fmt.Errorf("server version %s is below the supported major %d", version, minMajor)
	}

	return version, nil
}

// parseMajor extracts the leading major number of strings like "8.0.36-log",
// "5.7.44-google" or "16.2 (Debian 16.2-1.pgdg120+2)".
func parseMajor(version string) (int, error) {
	v := strings.TrimSpace(version)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}

	if end == 0 {
		return 0, fmt.Errorf("unparsable server version %q", version)
	}

	return strconv.Atoi(v[:end])
}
