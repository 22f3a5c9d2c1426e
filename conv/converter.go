package conv

import (
	"os"

	"github.com/BKWSU-UK/proxmox-privconvert/conv/inodeset"

	"code.cloudfoundry.org/lager/v3"
	errorspkg "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Converter applies the identity shift to one filesystem object at a time:
// ownership first, then mode restoration and ACL rewriting for everything
// that is not a symlink.
type Converter struct {
	inodes *inodeset.Set
	acls   ACLShifter
	offset int64
	maxID  uint32

	LchownSyscall func(path string, uid, gid int) error
	ChmodSyscall  func(path string, mode os.FileMode) error
}

func NewConverter(inodes *inodeset.Set, acls ACLShifter, offset int64, maxID uint32) *Converter {
	return &Converter{
		inodes:        inodes,
		acls:          acls,
		offset:        offset,
		maxID:         maxID,
		LchownSyscall: unix.Lchown,
		ChmodSyscall:  os.Chmod,
	}
}

// Convert shifts the ownership and ACLs of a single object. Hardlinked
// duplicates are skipped through the shared inode set; the inode is marked
// before any mutation so that a failed object is never reattempted through a
// sibling link. A bounds violation is returned to the walker, which treats
// it as fatal for the whole path.
func (c *Converter) Convert(logger lager.Logger, object Object) (Outcome, error) {
	logger = logger.Session("convert-object", lager.Data{"path": object.Path})
	logger.Debug("starting")
	defer logger.Debug("ending")

	if c.inodes.Seen(object.Stat.Dev, object.Stat.Ino) {
		logger.Debug("hardlink-already-converted")
		return OutcomeSkipped, nil
	}
	c.inodes.Mark(object.Stat.Dev, object.Stat.Ino)

	newUID, err := ShiftID(object.Stat.Uid, c.offset, c.maxID)
	if err != nil {
		logger.Error("shifting-uid-failed", err, lager.Data{"uid": object.Stat.Uid})
		return OutcomeError, errorspkg.Wrapf(err, "shifting uid of `%s`", object.Path)
	}
	newGID, err := ShiftID(object.Stat.Gid, c.offset, c.maxID)
	if err != nil {
		logger.Error("shifting-gid-failed", err, lager.Data{"gid": object.Stat.Gid})
		return OutcomeError, errorspkg.Wrapf(err, "shifting gid of `%s`", object.Path)
	}

	if err := c.LchownSyscall(object.Path, int(newUID), int(newGID)); err != nil {
		logger.Error("changing-ownership-failed", err, lager.Data{"uid": newUID, "gid": newGID})
		return OutcomeError, errorspkg.Wrapf(err, "changing ownership of `%s`", object.Path)
	}

	if object.Info.Mode()&os.ModeSymlink == 0 {
		c.restoreModeAndACLs(logger, object)
	}

	return OutcomeConverted, nil
}

// restoreModeAndACLs runs after a successful chown. Failures here are
// warnings only: ownership is already correct and a missing setgid bit or a
// stale ACL qualifier does not invalidate the conversion.
func (c *Converter) restoreModeAndACLs(logger lager.Logger, object Object) {
	// chown drops setuid/setgid bits, so the original mode goes back on
	if err := c.ChmodSyscall(object.Path, object.Info.Mode()); err != nil {
		logger.Info("restoring-mode-failed", lager.Data{"path": object.Path, "error": err.Error()})
	}

	if _, err := c.acls.ShiftAccess(logger, object.Path); err != nil {
		logger.Info("shifting-access-acl-failed", lager.Data{"path": object.Path, "error": err.Error()})
	}

	if object.Info.IsDir() {
		if _, err := c.acls.ShiftDefault(logger, object.Path); err != nil {
			logger.Info("shifting-default-acl-failed", lager.Data{"path": object.Path, "error": err.Error()})
		}
	}
}
