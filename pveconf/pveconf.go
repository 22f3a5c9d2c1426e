package pveconf // import "github.com/BKWSU-UK/proxmox-privconvert/pveconf"

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	errorspkg "github.com/pkg/errors"
)

const unprivilegedKey = "unprivileged"

var mountLineRegexp = regexp.MustCompile(`^(rootfs|mp\d+):\s*(\S.*)$`)

// Config is the subset of a Proxmox container configuration this tool cares
// about. Only the primary section is read; everything from the first
// bracketed snapshot header onwards describes an alternate state and is
// ignored here.
type Config struct {
	// Unprivileged is nil when the primary section carries no flag line.
	Unprivileged *bool
	// StorageSpecs holds the rootfs and mp<N> storage references in the
	// order they appear.
	StorageSpecs []string
}

func Parse(configPath string) (Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return Config{}, errorspkg.Wrap(err, "opening container config")
	}
	defer file.Close()

	cfg := Config{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "[") {
			break
		}

		if strings.HasPrefix(line, unprivilegedKey+":") {
			value := strings.TrimSpace(strings.TrimPrefix(line, unprivilegedKey+":"))
			flag, err := strconv.Atoi(value)
			if err != nil {
				return Config{}, errorspkg.Errorf("invalid %s flag `%s`", unprivilegedKey, value)
			}
			unprivileged := flag != 0
			cfg.Unprivileged = &unprivileged
			continue
		}

		if matches := mountLineRegexp.FindStringSubmatch(line); matches != nil {
			cfg.StorageSpecs = append(cfg.StorageSpecs, extractStorageSpec(matches[2]))
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, errorspkg.Wrap(err, "reading container config")
	}

	return cfg, nil
}

// extractStorageSpec cuts the storage reference out of a mount line value:
// everything before the first option comma.
func extractStorageSpec(value string) string {
	if idx := strings.Index(value, ","); idx != -1 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}
