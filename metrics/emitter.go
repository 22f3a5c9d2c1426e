package metrics // import "github.com/BKWSU-UK/proxmox-privconvert/metrics"

import (
	"time"

	"code.cloudfoundry.org/lager/v3"
)

// Emitter surfaces run progress and timing through the structured log
// stream. Progress notes are push-only and rate-limited to every interval-th
// converted object so that walking millions of inodes does not drown the
// log.
type Emitter struct {
	interval uint64
}

func NewEmitter(interval uint64) *Emitter {
	return &Emitter{interval: interval}
}

func (e *Emitter) TryEmitProgress(logger lager.Logger, root string, processed uint64) {
	if e.interval == 0 || processed%e.interval != 0 {
		return
	}
	logger.Info("progress", lager.Data{"root": root, "processed": processed})
}

func (e *Emitter) TryEmitDurationFrom(logger lager.Logger, name string, from time.Time) {
	logger.Info(name, lager.Data{"duration": time.Since(from).String()})
}
