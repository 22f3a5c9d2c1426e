package idfinder

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

var ctidRegexp = regexp.MustCompile(`^[1-9][0-9]*$`)

// ParseCTID validates a container ID argument. Proxmox CTIDs are positive
// integers; anything else is an operator mistake worth a clear message.
func ParseCTID(arg string) (int, error) {
	if !ctidRegexp.MatchString(arg) {
		return 0, fmt.Errorf("invalid container id `%s`", arg)
	}
	return strconv.Atoi(arg)
}

// FindConfigPath locates the container's configuration inside the
// cluster-wide LXC configuration directory.
func FindConfigPath(configDir string, ctid int) string {
	return filepath.Join(configDir, fmt.Sprintf("%d.conf", ctid))
}
