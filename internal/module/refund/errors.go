package refund

import "errors"

// Module errors.
var (
	ErrRefundNotFound = errors.New("refund not found")
)
