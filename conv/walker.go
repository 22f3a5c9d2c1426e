package conv

import (
	"os"
	"path/filepath"
	"syscall"

	"code.cloudfoundry.org/lager/v3"
	"github.com/karrick/godirwalk"
	errorspkg "github.com/pkg/errors"
)

// Walker performs a physical, depth-first traversal of one root path. It
// never follows symlinks and never crosses onto another filesystem. Every
// entry goes through the converter; only an identity bounds violation stops
// the walk early, because it means the tree is not in the starting state the
// run assumed.
type Walker struct {
	converter ObjectConverter
	progress  ProgressEmitter
}

func NewWalker(converter ObjectConverter, progress ProgressEmitter) *Walker {
	return &Walker{
		converter: converter,
		progress:  progress,
	}
}

func (w *Walker) Walk(logger lager.Logger, root string) (WalkSummary, error) {
	logger = logger.Session("walk", lager.Data{"root": root})
	logger.Info("starting")
	defer logger.Info("ending")

	rootInfo, err := os.Stat(root)
	if err != nil {
		return WalkSummary{}, errorspkg.Wrapf(err, "target path `%s`", root)
	}
	if !rootInfo.IsDir() {
		return WalkSummary{}, errorspkg.Errorf("target path `%s` is not a directory", root)
	}
	rootStat := rootInfo.Sys().(*syscall.Stat_t)

	summary := WalkSummary{}
	err = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, _ *godirwalk.Dirent) error {
			info, err := os.Lstat(path)
			if err != nil {
				logger.Error("stating-failed", err, lager.Data{"path": path})
				summary.Errored++
				return nil
			}

			stat := info.Sys().(*syscall.Stat_t)
			if stat.Dev != rootStat.Dev {
				logger.Info("mount-boundary", lager.Data{"path": path})
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			outcome, err := w.converter.Convert(logger, Object{Path: path, Info: info, Stat: stat})
			switch outcome {
			case OutcomeConverted:
				summary.Processed++
				w.progress.TryEmitProgress(logger, root, summary.Processed)
			case OutcomeSkipped:
				summary.Skipped++
			case OutcomeError:
				if IsBoundsViolation(err) {
					return err
				}
				summary.Errored++
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if IsBoundsViolation(err) {
				return godirwalk.Halt
			}
			logger.Error("walking-failed", err, lager.Data{"path": path})
			summary.Errored++
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return summary, errorspkg.Wrapf(err, "walking `%s`", root)
	}

	return summary, nil
}
