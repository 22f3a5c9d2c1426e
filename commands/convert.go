package commands // import "github.com/BKWSU-UK/proxmox-privconvert/commands"

import (
	"fmt"
	"os"
	"time"

	"github.com/BKWSU-UK/proxmox-privconvert/aclshift"
	"github.com/BKWSU-UK/proxmox-privconvert/commands/config"
	"github.com/BKWSU-UK/proxmox-privconvert/commands/idfinder"
	"github.com/BKWSU-UK/proxmox-privconvert/conv"
	"github.com/BKWSU-UK/proxmox-privconvert/conv/inodeset"
	"github.com/BKWSU-UK/proxmox-privconvert/liveness"
	locksmithpkg "github.com/BKWSU-UK/proxmox-privconvert/locksmith"
	"github.com/BKWSU-UK/proxmox-privconvert/metrics"
	"github.com/BKWSU-UK/proxmox-privconvert/metrics/systemreporter"
	"github.com/BKWSU-UK/proxmox-privconvert/pveconf"

	"code.cloudfoundry.org/commandrunner/linux_command_runner"
	"code.cloudfoundry.org/lager/v3"
	errorspkg "github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var ConvertCommand = cli.Command{
	Name:        "convert",
	Usage:       "convert <ctid> <privileged|unprivileged>",
	Description: "Converts a container's filesystems to the target privilege mode and updates its configuration.",

	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "Skip the interactive confirmation",
		},
		&cli.Int64Flag{
			Name:  "id-offset",
			Usage: "UID/GID distance between the privileged and unprivileged ranges",
		},
		&cli.UintFlag{
			Name:  "max-id",
			Usage: "Highest UID/GID a conversion may produce",
		},
	},

	Action: func(ctx *cli.Context) error {
		logger := ctx.App.Metadata["logger"].(lager.Logger)
		logger = logger.Session("convert")

		if ctx.NArg() != 2 {
			logger.Error("parsing-command", errorspkg.New("invalid arguments"), lager.Data{"args": ctx.Args()})
			return cli.Exit(fmt.Sprintf("invalid arguments - usage: %s", ctx.Command.Usage), 1)
		}

		ctid, err := idfinder.ParseCTID(ctx.Args().Get(0))
		if err != nil {
			logger.Error("parsing-command", err)
			return cli.Exit(err.Error(), 1)
		}
		targetUnprivileged, err := parseTargetState(ctx.Args().Get(1))
		if err != nil {
			logger.Error("parsing-command", err)
			return cli.Exit(err.Error(), 1)
		}

		configBuilder := ctx.App.Metadata["configBuilder"].(*config.Builder)
		if ctx.IsSet("id-offset") {
			configBuilder = configBuilder.WithIDOffset(ctx.Int64("id-offset"))
		}
		if ctx.IsSet("max-id") {
			configBuilder = configBuilder.WithMaxID(uint32(ctx.Uint("max-id")))
		}
		cfg, err := configBuilder.Build()
		if err != nil {
			logger.Error("config-builder-failed", err)
			return cli.Exit(err.Error(), 1)
		}

		cmdRunner := linux_command_runner.New()
		prober := liveness.NewProber(cmdRunner)
		if prober.Running(logger, ctid) {
			err := errorspkg.Errorf("container %d is running, stop it before converting", ctid)
			logger.Error("container-running", err)
			return cli.Exit(err.Error(), 1)
		}

		configPath := idfinder.FindConfigPath(cfg.LxcConfigDir, ctid)
		containerCfg, err := pveconf.Parse(configPath)
		if err != nil {
			logger.Error("reading-container-config-failed", err)
			return cli.Exit(err.Error(), 1)
		}
		if containerCfg.Unprivileged == nil {
			fmt.Fprintln(ctx.App.Writer, "Warning: no unprivileged flag in configuration, assuming privileged")
		}

		paths, err := containerCfg.TargetPaths()
		if err != nil {
			logger.Error("resolving-storage-failed", err)
			return cli.Exit(err.Error(), 1)
		}
		if len(paths) == 0 {
			logger.Error("no-filesystems", errorspkg.New("no filesystems in configuration"))
			return cli.Exit(fmt.Sprintf("no filesystems found in %s", configPath), 1)
		}

		if containerCfg.Unprivileged != nil && *containerCfg.Unprivileged == targetUnprivileged {
			fmt.Fprintf(ctx.App.Writer, "Container %d is already %s\n", ctid, stateLabel(targetUnprivileged))
			return nil
		}

		offset := cfg.IDOffset
		if !targetUnprivileged {
			offset = -offset
		}

		fmt.Fprintf(ctx.App.Writer, "Converting container %d to %s (offset %+d)\n", ctid, stateLabel(targetUnprivileged), offset)
		for _, path := range paths {
			fmt.Fprintf(ctx.App.Writer, "  %s\n", path)
		}

		if !ctx.Bool("yes") && !confirm(os.Stdin, ctx.App.Writer) {
			fmt.Fprintln(ctx.App.Writer, "Aborted.")
			return nil
		}

		if os.Geteuid() != 0 {
			err := errorspkg.New("conversion must run as root")
			logger.Error("not-root", err)
			return cli.Exit(err.Error(), 1)
		}

		locksmith := locksmithpkg.NewExclusiveFileSystem(cfg.LocksDir)
		lockFile, err := locksmith.Lock(fmt.Sprintf("ct-%d", ctid))
		if err != nil {
			logger.Error("locking-failed", err)
			return cli.Exit(err.Error(), 1)
		}
		defer func() {
			if err := locksmith.Unlock(lockFile); err != nil {
				logger.Error("unlocking-failed", err)
			}
		}()

		inodes := inodeset.New()
		defer inodes.Release()

		emitter := metrics.NewEmitter(cfg.ProgressInterval)
		shifter := aclshift.NewShifter(offset, cfg.MaxID)
		converter := conv.NewConverter(inodes, shifter, offset, cfg.MaxID)
		driver := conv.NewDriver(conv.NewWalker(converter, emitter))

		startTime := time.Now()
		summary, convertErr := driver.ConvertAll(logger, paths)
		emitter.TryEmitDurationFrom(logger, "conversion-duration", startTime)
		systemreporter.NewLogBased(time.Duration(cfg.SlowRunThresholdS)*time.Second, cmdRunner).
			Report(logger, time.Since(startTime))

		printSummary(ctx.App.Writer, summary)
		if convertErr != nil {
			logger.Error("conversion-failed", convertErr)
			fmt.Fprintln(ctx.App.Writer, "Conversion completed with errors. NOT updating configuration.")
			return cli.Exit(errorspkg.Cause(convertErr).Error(), 1)
		}

		if err := pveconf.SetUnprivileged(configPath, targetUnprivileged); err != nil {
			logger.Error("updating-container-config-failed", err)
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintf(ctx.App.Writer, "Container %d is now %s\n", ctid, stateLabel(targetUnprivileged))
		return nil
	},
}
