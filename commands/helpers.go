package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/BKWSU-UK/proxmox-privconvert/conv"

	errorspkg "github.com/pkg/errors"
)

func parseTargetState(arg string) (bool, error) {
	switch arg {
	case "unprivileged":
		return true, nil
	case "privileged":
		return false, nil
	default:
		return false, errorspkg.Errorf("target mode must be `privileged` or `unprivileged`, got `%s`", arg)
	}
}

func stateLabel(unprivileged bool) string {
	if unprivileged {
		return "unprivileged"
	}
	return "privileged"
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "WARNING: this operation rewrites file ownership on the container's filesystems.")
	fmt.Fprint(out, "Proceed? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

func printSummary(out io.Writer, summary conv.RunSummary) {
	for _, result := range summary.Results {
		status := "ok"
		if result.Err != nil {
			status = result.Err.Error()
		} else if result.Summary.Errored > 0 {
			status = fmt.Sprintf("%d errors", result.Summary.Errored)
		}
		fmt.Fprintf(out, "%s: %d processed, %d hardlinks skipped (%s)\n",
			result.Path, result.Summary.Processed, result.Summary.Skipped, status)
	}
}
