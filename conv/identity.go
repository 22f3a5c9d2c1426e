package conv

import (
	errorspkg "github.com/pkg/errors"
)

const (
	// DefaultIDOffset is the reference Proxmox mapping between host-range
	// and unprivileged-range identities.
	DefaultIDOffset = 100000
	// DefaultMaxID bounds any identity a conversion may produce.
	DefaultMaxID = 200000
)

var (
	// ErrIdentityUnderflow means a negative offset would take a UID/GID
	// below zero. The tree is already privileged, or is not a converted
	// container tree at all; the two cases are indistinguishable here.
	ErrIdentityUnderflow = errorspkg.New("uid/gid would become negative: tree already privileged or not a container filesystem")

	// ErrIdentityOverflow is the positive-offset counterpart: the shifted
	// identity would leave the permitted range, which usually means the
	// tree is already unprivileged.
	ErrIdentityOverflow = errorspkg.New("uid/gid would exceed the maximum: tree already unprivileged")
)

// ShiftID applies a signed offset to a single identity with checked
// arithmetic. No wrapped-around value ever escapes to a chown or an ACL
// write.
func ShiftID(id uint32, offset int64, maxID uint32) (uint32, error) {
	if offset < 0 {
		magnitude := uint64(-offset)
		if uint64(id) < magnitude {
			return 0, ErrIdentityUnderflow
		}
		return id - uint32(magnitude), nil
	}

	shifted := uint64(id) + uint64(offset)
	if shifted > uint64(maxID) {
		return 0, ErrIdentityOverflow
	}
	return uint32(shifted), nil
}

// IsBoundsViolation tells fatal-to-path identity errors apart from the
// recoverable per-object kind.
func IsBoundsViolation(err error) bool {
	cause := errorspkg.Cause(err)
	return cause == ErrIdentityUnderflow || cause == ErrIdentityOverflow
}
