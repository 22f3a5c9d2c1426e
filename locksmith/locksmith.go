package locksmith // import "github.com/BKWSU-UK/proxmox-privconvert/locksmith"

import (
	"os"
	"path/filepath"
	"strings"

	errorspkg "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

//go:generate counterfeiter . Locksmith

type Locksmith interface {
	Lock(key string) (*os.File, error)
	Unlock(lockFile *os.File) error
}

// FileSystem serializes conversion runs with an exclusive flock per
// container. The config patcher must never run concurrently against the
// same configuration path, and two convert runs over the same tree would
// double-shift it.
type FileSystem struct {
	locksDir string

	FlockSyscall func(fd int, how int) error
}

func NewExclusiveFileSystem(locksDir string) *FileSystem {
	return &FileSystem{
		locksDir:     locksDir,
		FlockSyscall: unix.Flock,
	}
}

func (l *FileSystem) Lock(key string) (*os.File, error) {
	if err := os.MkdirAll(l.locksDir, 0755); err != nil {
		return nil, errorspkg.Wrap(err, "creating locks directory")
	}

	key = strings.Replace(key, "/", "", -1)
	lockFile, err := os.OpenFile(l.path(key), os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errorspkg.Wrapf(err, "creating lock file for key `%s`", key)
	}

	fd := int(lockFile.Fd())
	if err := l.FlockSyscall(fd, unix.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, errorspkg.Wrapf(err, "acquiring lock for key `%s`", key)
	}

	return lockFile, nil
}

func (l *FileSystem) Unlock(lockFile *os.File) error {
	defer lockFile.Close()
	fd := int(lockFile.Fd())
	return l.FlockSyscall(fd, unix.LOCK_UN)
}

func (l *FileSystem) path(key string) string {
	return filepath.Join(l.locksDir, key+".lock")
}
