package conv // import "github.com/BKWSU-UK/proxmox-privconvert/conv"

import (
	"os"
	"syscall"

	"code.cloudfoundry.org/lager/v3"
)

//go:generate counterfeiter . ObjectConverter
//go:generate counterfeiter . ACLShifter

// Object is the stat snapshot of a single directory entry, produced by the
// walker and consumed immediately by the converter. It is never retained.
type Object struct {
	Path string
	Info os.FileInfo
	Stat *syscall.Stat_t
}

type Outcome int

const (
	OutcomeConverted Outcome = iota
	OutcomeSkipped
	OutcomeError
)

type ObjectConverter interface {
	Convert(logger lager.Logger, object Object) (Outcome, error)
}

// ACLShifter rewrites USER/GROUP qualifiers of an object's ACLs. Access ACLs
// apply to every non-symlink object, default ACLs to directories only.
type ACLShifter interface {
	ShiftAccess(logger lager.Logger, path string) (bool, error)
	ShiftDefault(logger lager.Logger, path string) (bool, error)
}

// ProgressEmitter pushes a periodic note about how far a walk has come. It
// must never block or interact with the operator.
type ProgressEmitter interface {
	TryEmitProgress(logger lager.Logger, root string, processed uint64)
}

type WalkSummary struct {
	Processed uint64
	Skipped   uint64
	Errored   uint64
}

type PathResult struct {
	Path    string
	Summary WalkSummary
	Err     error
}

type RunSummary struct {
	Results []PathResult
}

// OK reports whether every target path completed its walk with zero
// per-object errors. Only then may the container configuration be patched.
func (s RunSummary) OK() bool {
	for _, result := range s.Results {
		if result.Err != nil || result.Summary.Errored > 0 {
			return false
		}
	}
	return len(s.Results) > 0
}
