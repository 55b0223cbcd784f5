package payment

import "errors"

// Module errors.
var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrProviderNotFound = errors.New("payment provider not found")
)
