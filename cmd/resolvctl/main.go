package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/resolverd/resolvctl/config"
	"github.com/resolverd/resolvctl/control"
	"github.com/resolverd/resolvctl/internal/files"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultConfigFile = "/etc/resolverd/resolverd.yaml"
	configFileName    = "resolverd.yaml"
	daemonBinary      = "resolverd"
)

func main() {
	app := &cli.App{
		Name:      "resolvctl",
		Usage:     "remote control utility for the resolverd server",
		ArgsUsage: "command [args...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file, default is " + defaultConfigFile,
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "server address as ip or ip@port, if omitted config is used",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "start the server; runs " + daemonBinary + "(8)",
				Action: func(ctx *cli.Context) error {
					return startServer(ctx.String("config"))
				},
			},
			{
				Name:  "setup",
				Usage: "generate the server and control certificates",
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx.String("config"))
					if err != nil {
						return err
					}
					return setupCerts(cfg)
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Args().Len() == 0 {
				cli.ShowAppHelpAndExit(ctx, 1)
			}

			logger, err := buildLogger(ctx.Bool("verbose"))
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync()

			cfg, err := loadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			command := strings.Join(ctx.Args().Slice(), " ") + "\n"
			client := control.NewClient(cfg, control.WithLogger(logger))
			return client.Run(ctx.Context, ctx.String("server"), []byte(command), os.Stdout)
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "resolvctl: error: %s\n", err)
		os.Exit(1)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return logCfg.Build()
}

// loadConfig resolves the config file: the explicit -c path must load, an
// omitted path falls back to the stock location, then to an upward search
// from the working directory, then to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	if wd, err := os.Getwd(); err == nil {
		if found := files.FindUp(configFileName, wd); found != "" {
			return config.Load(found)
		}
	}
	return config.Default(), nil
}

// startServer replaces this process with the daemon, as the original
// control tool does.
func startServer(cfgFile string) error {
	bin, err := exec.LookPath(daemonBinary)
	if err != nil {
		return fmt.Errorf("could not find %s: %w", daemonBinary, err)
	}
	args := []string{daemonBinary}
	if cfgFile != "" {
		args = append(args, "-c", cfgFile)
	}
	if err := syscall.Exec(bin, args, os.Environ()); err != nil {
		return fmt.Errorf("could not exec %s: %w", daemonBinary, err)
	}
	return nil
}

func setupCerts(cfg *config.Config) error {
	rc := cfg.RemoteControl
	certs, err := control.GenerateCerts(rc.ServerCertName)
	if err != nil {
		return fmt.Errorf("generating control certificates: %w", err)
	}
	err = certs.WriteFiles(rc.ServerCertFile, rc.ServerKeyFile, rc.ControlCertFile, rc.ControlKeyFile)
	if err != nil {
		return err
	}
	fmt.Printf("setup: wrote %s %s %s %s\n",
		rc.ServerCertFile, rc.ServerKeyFile, rc.ControlCertFile, rc.ControlKeyFile)
	return nil
}
