package liveness // import "github.com/BKWSU-UK/proxmox-privconvert/liveness"

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"code.cloudfoundry.org/commandrunner"
	"code.cloudfoundry.org/lager/v3"
)

// Prober answers a single question: is this container currently running?
// Converting ownership under a live container would race its workload, so
// the convert command refuses to start while any of the probes fires.
type Prober struct {
	cmdRunner commandrunner.CommandRunner

	// CgroupRoot and LockDir exist so tests can point the probes at a
	// scratch directory.
	CgroupRoot string
	LockDir    string
}

func NewProber(cmdRunner commandrunner.CommandRunner) *Prober {
	return &Prober{
		cmdRunner:  cmdRunner,
		CgroupRoot: "/sys/fs/cgroup",
		LockDir:    "/var/lock/lxc/var/lib/lxc",
	}
}

func (p *Prober) Running(logger lager.Logger, ctid int) bool {
	logger = logger.Session("liveness", lager.Data{"ctid": ctid})

	// cgroup v2 monitor scope, then the two v1 layouts
	cgroupPaths := []string{
		filepath.Join(p.CgroupRoot, fmt.Sprintf("lxc.monitor.%d", ctid)),
		filepath.Join(p.CgroupRoot, "systemd", "lxc", strconv.Itoa(ctid)),
		filepath.Join(p.CgroupRoot, "lxc", strconv.Itoa(ctid)),
	}
	for _, path := range cgroupPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			logger.Debug("cgroup-present", lager.Data{"path": path})
			return true
		}
	}

	if p.pctReportsRunning(logger, ctid) {
		return true
	}

	if _, err := os.Stat(filepath.Join(p.LockDir, strconv.Itoa(ctid))); err == nil {
		logger.Debug("lock-file-present")
		return true
	}

	return false
}

func (p *Prober) pctReportsRunning(logger lager.Logger, ctid int) bool {
	buffer := bytes.NewBuffer([]byte{})
	cmd := exec.Command("pct", "status", strconv.Itoa(ctid))
	cmd.Stdout = buffer
	cmd.Stderr = buffer

	if err := p.cmdRunner.Run(cmd); err != nil {
		// pct missing or erroring just means this probe has no opinion
		logger.Debug("pct-status-unavailable", lager.Data{"error": err.Error()})
		return false
	}

	return strings.Contains(buffer.String(), "status: running")
}
