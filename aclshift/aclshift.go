package aclshift // import "github.com/BKWSU-UK/proxmox-privconvert/aclshift"

import (
	"errors"
	"strconv"

	"github.com/BKWSU-UK/proxmox-privconvert/conv"

	"code.cloudfoundry.org/lager/v3"
	"github.com/joshlf/go-acl"
	errorspkg "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Shifter rewrites the numeric qualifiers of USER and GROUP ACL entries by
// the run's identity offset. The ACL is read into memory, transformed there,
// and written back in a single set call only when at least one entry
// actually changed; a bounds violation therefore never leaves a
// half-rewritten ACL on disk.
type Shifter struct {
	offset int64
	maxID  uint32

	GetACL        func(path string) (acl.ACL, error)
	SetACL        func(path string, entries acl.ACL) error
	GetDefaultACL func(path string) (acl.ACL, error)
	SetDefaultACL func(path string, entries acl.ACL) error
}

func NewShifter(offset int64, maxID uint32) *Shifter {
	return &Shifter{
		offset:        offset,
		maxID:         maxID,
		GetACL:        acl.Get,
		SetACL:        acl.Set,
		GetDefaultACL: acl.GetDefault,
		SetDefaultACL: acl.SetDefault,
	}
}

func (s *Shifter) ShiftAccess(logger lager.Logger, path string) (bool, error) {
	return s.shift(logger.Session("shift-access-acl"), path, s.GetACL, s.SetACL)
}

// ShiftDefault rewrites the default ACL, which exists on directories only
// and is inherited by their future children.
func (s *Shifter) ShiftDefault(logger lager.Logger, path string) (bool, error) {
	return s.shift(logger.Session("shift-default-acl"), path, s.GetDefaultACL, s.SetDefaultACL)
}

func (s *Shifter) shift(
	logger lager.Logger,
	path string,
	get func(string) (acl.ACL, error),
	set func(string, acl.ACL) error,
) (bool, error) {
	entries, err := get(path)
	if err != nil {
		if aclsUnsupported(err) {
			return false, nil
		}
		return false, errorspkg.Wrapf(err, "reading acl of `%s`", path)
	}

	changed := false
	updated := make(acl.ACL, 0, len(entries))
	for _, entry := range entries {
		// only USER and GROUP entries carry an independent identity
		if entry.Tag == acl.TagUser || entry.Tag == acl.TagGroup {
			qualifier, err := strconv.ParseUint(entry.Qualifier, 10, 32)
			if err != nil {
				logger.Info("unparseable-acl-qualifier", lager.Data{"path": path, "qualifier": entry.Qualifier})
				updated = append(updated, entry)
				continue
			}

			shifted, err := conv.ShiftID(uint32(qualifier), s.offset, s.maxID)
			if err != nil {
				return false, errorspkg.Wrapf(err, "shifting acl qualifier %d of `%s`", qualifier, path)
			}

			entry.Qualifier = strconv.FormatUint(uint64(shifted), 10)
			changed = true
		}
		updated = append(updated, entry)
	}

	if !changed {
		return false, nil
	}

	if err := set(path, updated); err != nil {
		if aclsUnsupported(err) {
			return false, nil
		}
		return false, errorspkg.Wrapf(err, "writing acl of `%s`", path)
	}
	return true, nil
}

// aclsUnsupported matches filesystems without POSIX ACL support. That is an
// expected condition, not an error.
func aclsUnsupported(err error) bool {
	return errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.ENOSYS)
}
