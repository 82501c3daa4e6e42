package balances

import "github.com/cockroachdb/errors"

// ErrNoDataAvailable is returned when every per-asset query failed.
var ErrNoDataAvailable = errors.New("could not retrieve any balances for this address")
