package domain

import "errors"

// Error kinds per failure class. Configuration errors are fatal before any
// remote call; input errors skip the offending record; transport and
// extraction errors fail a single record and never abort the batch.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrInput         = errors.New("input validation error")
	ErrTransport     = errors.New("transport error")
	ErrExtraction    = errors.New("extraction error")
)
