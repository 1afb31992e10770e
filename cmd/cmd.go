// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

// setupCommand writes a starter config and initializes profile storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize profile storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server"},
		Usage:   "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// emotionsCommand lists the supported emotions.
func emotionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "emotions",
		Usage: "List supported emotions and their artists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Emotions,
	}
}

// playlistCommand generates a playlist for an emotion.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Generate a playlist for an emotion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "emotion",
				Aliases:  []string{"e"},
				Usage:    "Emotion (happy, energized, chill)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User id whose playlistLength preference applies",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, csv, markdown, text)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file (a directory for markdown) instead of stdout",
			},
		},
		Action: r.Playlist,
	}
}

// profileCommand manages stored user profiles.
func profileCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{
				Name:    "length",
				Aliases: []string{"l"},
				Usage:   "Preferred playlist length",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Preference as key=value; value is parsed as JSON when possible",
			},
		}
	}

	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"user"},
		Usage:   "Manage user profiles",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a profile",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ProfileGet,
			},
			{
				Name:      "save",
				Usage:     "Create a profile or merge preferences into it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     flags(),
				Action:    r.ProfileSave,
			},
			{
				Name:      "prefs",
				Usage:     "Merge preferences into an existing profile",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     flags(),
				Action:    r.ProfilePrefs,
			},
			{
				Name:   "list",
				Usage:  "List all profiles",
				Action: r.ProfileList,
			},
		},
	}
}

// searchCommand queries the catalog directly.
func searchCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (1-50)",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		}
	}

	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog",
		Commands: []*cli.Command{
			{
				Name:      "tracks",
				Usage:     "Search for tracks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     flags(),
				Action:    r.SearchTracks,
			},
			{
				Name:      "artists",
				Usage:     "Search for artists",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     flags(),
				Action:    r.SearchArtists,
			},
		},
	}
}

// authCommand checks catalog connectivity.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Catalog authentication",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Obtain an access token to verify credentials",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthCheck,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive emotion picker.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive emotion picker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User id whose playlistLength preference applies",
			},
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory for JSON exports",
				Value: ".",
			},
		},
		Action: r.TUI,
	}
}
