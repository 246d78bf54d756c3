package reload

import (
	"errors"
)

var (
	ErrNoTransferSource = errors.New("zone file not found and no transfer-in source configured")
	ErrOriginMismatch   = errors.New("zone file origin does not match configured name")
	ErrNoPendingData    = errors.New("no pending journal data")
	ErrNoDatabase       = errors.New("no database getter")
)
