package main

import (
	"os"

	"github.com/BKWSU-UK/proxmox-privconvert/commands"
	"github.com/BKWSU-UK/proxmox-privconvert/commands/config"

	"code.cloudfoundry.org/lager/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	privconvert := cli.NewApp()
	privconvert.Name = "privconvert"
	privconvert.Usage = "Convert Proxmox LXC containers between privileged and unprivileged mode"
	privconvert.Version = "1.0.0"

	privconvert.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a privconvert YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "lxc-config-dir",
			Usage: "Directory holding the per-container LXC configuration files",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Set for verbose logging",
		},
	}

	privconvert.Commands = []*cli.Command{
		&commands.ConvertCommand,
		&commands.StatusCommand,
	}

	privconvert.Before = func(ctx *cli.Context) error {
		logger := lager.NewLogger("privconvert")
		logLevel := lager.INFO
		if ctx.Bool("debug") {
			logLevel = lager.DEBUG
		}
		logger.RegisterSink(lager.NewWriterSink(os.Stderr, logLevel))
		ctx.App.Metadata["logger"] = logger

		configBuilder := config.NewBuilder()
		if ctx.IsSet("config") {
			var err error
			configBuilder, err = config.NewBuilderFromFile(ctx.String("config"))
			if err != nil {
				logger.Error("loading-config-failed", err)
				return cli.Exit(err.Error(), 1)
			}
		}
		configBuilder = configBuilder.WithLxcConfigDir(ctx.String("lxc-config-dir"))
		ctx.App.Metadata["configBuilder"] = configBuilder

		return nil
	}

	if err := privconvert.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
