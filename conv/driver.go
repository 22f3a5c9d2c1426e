package conv

import (
	"code.cloudfoundry.org/lager/v3"
	errorspkg "github.com/pkg/errors"
)

//go:generate counterfeiter . TreeWalker

type TreeWalker interface {
	Walk(logger lager.Logger, root string) (WalkSummary, error)
}

// Driver runs the walker over every target path of a conversion. A failed
// path does not stop the remaining ones from being attempted, so the
// operator sees the complete picture, but any failure anywhere makes the
// whole run a failure. The caller must not patch the container
// configuration unless ConvertAll returns without error.
type Driver struct {
	walker TreeWalker
}

func NewDriver(walker TreeWalker) *Driver {
	return &Driver{walker: walker}
}

func (d *Driver) ConvertAll(logger lager.Logger, paths []string) (RunSummary, error) {
	logger = logger.Session("convert-all", lager.Data{"paths": paths})
	logger.Info("starting")
	defer logger.Info("ending")

	if len(paths) == 0 {
		return RunSummary{}, errorspkg.New("no target paths to convert")
	}

	summary := RunSummary{}
	for _, path := range paths {
		walkSummary, err := d.walker.Walk(logger, path)
		if err != nil {
			logger.Error("converting-path-failed", err, lager.Data{"path": path})
		}
		summary.Results = append(summary.Results, PathResult{
			Path:    path,
			Summary: walkSummary,
			Err:     err,
		})
	}

	if !summary.OK() {
		return summary, errorspkg.New("conversion finished with errors")
	}
	return summary, nil
}
