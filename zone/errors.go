package zone

import (
	"errors"
)

var (
	ErrNoSOA         = errors.New("zone has no SOA at its apex")
	ErrMultipleSOA   = errors.New("zone has more than one SOA")
	ErrOutOfZone     = errors.New("record is not within the zone")
	ErrBadNSEC3Param = errors.New("missing or unusable NSEC3PARAM")
	ErrFreezeTimeout = errors.New("timed out waiting for in-flight operations")
	ErrNotFrozen     = errors.New("zone is not frozen")
	ErrRetired       = errors.New("zone is retired")
	ErrNotOwner      = errors.New("zone does not own the contents")
	ErrHasContents   = errors.New("zone already has contents")
)
