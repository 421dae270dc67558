package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/brutella/hc/log"
	"github.com/urfave/cli/v2"

	"github.com/cloudkucooland/ecolorbridge"
	"github.com/cloudkucooland/ecolorbridge/config"
	"github.com/cloudkucooland/ecolorbridge/platform"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "ecolor bridge",
		Usage: "bridge Ecolor lights into HomeKit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "config",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "server.json",
				Usage:       "configuration file (.json or .yaml)",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "debug logging, overrides LogLevel",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			fulldir, err := filepath.Abs(dir)
			if err != nil {
				return cli.Exit("unable to get config directory: "+dir, 1)
			}

			conf, err := config.Load(filepath.Join(fulldir, file))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if debug {
				conf.LogLevel = "debug"
			}
			if err := ecolorbridge.SetupLogging(conf); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			// spin up platforms, discovers the devices
			ecolorbridge.BootstrapPlatforms(conf)

			// HC can only be started once all accessories are known
			ecolorbridge.StartHC(conf)

			// connects the device sessions
			platform.Background()

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			sig := <-sigch
			log.Info.Printf("shutdown requested by signal: %s", sig)
			platform.ShutdownAllPlatforms()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}
