package ledger

import "errors"

// Module errors.
var (
	ErrNoSplitEntries = errors.New("no split entries found for order")
)
