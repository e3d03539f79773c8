// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// Command builds the root command. With --resume or --pause it runs once without the TUI.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:    "imspotify",
		Usage:   "Terminal Spotify playback client",
		Version: "0.1.0",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Resume playback on the active device and exit",
			},
			&cli.BoolFlag{
				Name:  "pause",
				Usage: "Pause playback on the active device and exit",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		Action:   r.Root,
		Commands: r.register(),
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config.toml from the built-in template",
		Action: r.Setup,
	}
}

// authCommand runs the Spotify OAuth2 flow and stores the token in the config file.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: authTimeout,
			},
		},
		Action: r.SpotifyAuth,
	}
}
