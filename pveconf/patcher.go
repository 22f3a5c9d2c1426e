package pveconf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errorspkg "github.com/pkg/errors"
)

// SetUnprivileged rewrites the unprivileged flag in the primary section of a
// container configuration. The new content is written to a temporary file in
// the same directory and renamed over the original, so readers observe
// either the old or the new configuration, never a partial one. Snapshot
// sections are copied byte-for-byte, including any flag-looking lines they
// contain. On any failure the original file is left untouched.
func SetUnprivileged(configPath string, unprivileged bool) error {
	source, err := os.Open(configPath)
	if err != nil {
		return errorspkg.Wrap(err, "opening container config")
	}
	defer source.Close()

	temp, err := os.CreateTemp(filepath.Dir(configPath), filepath.Base(configPath)+".tmp")
	if err != nil {
		return errorspkg.Wrap(err, "creating temporary config")
	}
	defer os.Remove(temp.Name())
	defer temp.Close()

	if err := rewriteFlag(source, temp, unprivileged); err != nil {
		return err
	}

	if err := temp.Close(); err != nil {
		return errorspkg.Wrap(err, "closing temporary config")
	}

	return errorspkg.Wrap(os.Rename(temp.Name(), configPath), "replacing container config")
}

func rewriteFlag(source io.Reader, destination io.Writer, unprivileged bool) error {
	value := 0
	if unprivileged {
		value = 1
	}
	flagLine := fmt.Sprintf("%s: %d", unprivilegedKey, value)

	writer := bufio.NewWriter(destination)
	written := false
	inTrailingSection := false

	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		line := scanner.Text()

		if !inTrailingSection && strings.HasPrefix(line, "[") {
			// the flag must land in the primary section, so it goes in
			// right before the first snapshot header
			if !written {
				fmt.Fprintln(writer, flagLine)
				written = true
			}
			inTrailingSection = true
		}

		if !inTrailingSection && strings.HasPrefix(line, unprivilegedKey+":") {
			fmt.Fprintln(writer, flagLine)
			written = true
			continue
		}

		fmt.Fprintln(writer, line)
	}
	if err := scanner.Err(); err != nil {
		return errorspkg.Wrap(err, "reading container config")
	}

	if !written {
		fmt.Fprintln(writer, flagLine)
	}

	return errorspkg.Wrap(writer.Flush(), "writing temporary config")
}
