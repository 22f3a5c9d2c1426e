package commands

import (
	"fmt"

	"github.com/BKWSU-UK/proxmox-privconvert/commands/config"
	"github.com/BKWSU-UK/proxmox-privconvert/commands/idfinder"
	"github.com/BKWSU-UK/proxmox-privconvert/liveness"
	"github.com/BKWSU-UK/proxmox-privconvert/pveconf"

	"code.cloudfoundry.org/commandrunner/linux_command_runner"
	"code.cloudfoundry.org/lager/v3"
	errorspkg "github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var StatusCommand = cli.Command{
	Name:        "status",
	Usage:       "status <ctid>",
	Description: "Shows a container's privilege state and the filesystems a conversion would touch.",

	Action: func(ctx *cli.Context) error {
		logger := ctx.App.Metadata["logger"].(lager.Logger)
		logger = logger.Session("status")

		if ctx.NArg() != 1 {
			logger.Error("parsing-command", errorspkg.New("invalid arguments"), lager.Data{"args": ctx.Args()})
			return cli.Exit(fmt.Sprintf("invalid arguments - usage: %s", ctx.Command.Usage), 1)
		}

		ctid, err := idfinder.ParseCTID(ctx.Args().Get(0))
		if err != nil {
			logger.Error("parsing-command", err)
			return cli.Exit(err.Error(), 1)
		}

		configBuilder := ctx.App.Metadata["configBuilder"].(*config.Builder)
		cfg, err := configBuilder.Build()
		if err != nil {
			logger.Error("config-builder-failed", err)
			return cli.Exit(err.Error(), 1)
		}

		configPath := idfinder.FindConfigPath(cfg.LxcConfigDir, ctid)
		containerCfg, err := pveconf.Parse(configPath)
		if err != nil {
			logger.Error("reading-container-config-failed", err)
			return cli.Exit(err.Error(), 1)
		}

		state := "unknown (no unprivileged flag in configuration)"
		if containerCfg.Unprivileged != nil {
			state = stateLabel(*containerCfg.Unprivileged)
		}
		fmt.Fprintf(ctx.App.Writer, "Container:  %d\n", ctid)
		fmt.Fprintf(ctx.App.Writer, "Config:     %s\n", configPath)
		fmt.Fprintf(ctx.App.Writer, "State:      %s\n", state)

		prober := liveness.NewProber(linux_command_runner.New())
		running := "stopped"
		if prober.Running(logger, ctid) {
			running = "running"
		}
		fmt.Fprintf(ctx.App.Writer, "Status:     %s\n", running)

		paths, err := containerCfg.TargetPaths()
		if err != nil {
			logger.Error("resolving-storage-failed", err)
			return cli.Exit(err.Error(), 1)
		}
		fmt.Fprintln(ctx.App.Writer, "Filesystems:")
		for _, path := range paths {
			fmt.Fprintf(ctx.App.Writer, "  %s\n", path)
		}

		return nil
	},
}
