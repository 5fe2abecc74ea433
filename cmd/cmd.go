// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/raffle/internal/formatter"
	"github.com/urfave/cli/v3"
)

// rootCommand builds the raffle command tree with its global flags.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "raffle",
		Usage:   "Run live prize drawings from the terminal",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("RAFFLE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "memory",
				Usage: "Keep state in memory only (nothing is saved)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Sources: cli.EnvVars("RAFFLE_LOG_LEVEL"),
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// participantsCommand handles roster operations
func participantsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "participants",
		Aliases: []string{"p"},
		Usage:   "Manage the participant roster",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List participants, annotated with their latest prize",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ParticipantsList,
			},
			{
				Name:  "add",
				Usage: "Add a participant",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ParticipantsAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a participant (winner records are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ParticipantsRemove,
			},
			{
				Name:  "clear",
				Usage: "Remove every participant",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm deleting all participants",
					},
				},
				Action: r.ParticipantsClear,
			},
			{
				Name:      "search",
				Usage:     "Search participants by name or won prize (all words must match)",
				ArgsUsage: "<query...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ParticipantsSearch,
			},
			{
				Name:  "import",
				Usage: "Import participants from a text file (one per line) or a CSV with a name column",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the roster file",
						Required: true,
					},
				},
				Action: r.ParticipantsImport,
			},
		},
	}
}

// winnersCommand handles ledger operations
func winnersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "winners",
		Aliases: []string{"w"},
		Usage:   "Inspect and manage the winner ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List winners grouped by prize, latest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prize",
						Usage: "Only show this prize",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON records",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.WinnersList,
			},
			{
				Name:  "reenter",
				Usage: "Remove a participant's most recent winner record (or one record by --id) so they can be drawn again",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prize",
						Usage: "Only remove a record for this prize",
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "Remove the record with this ID instead (see winners list --json)",
					},
				},
				Action: r.WinnersReEnter,
			},
			{
				Name:  "export",
				Usage: "Export winners to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + joinFormats(),
						Value:   formatter.FormatCSV,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: winners.{ext})",
					},
				},
				Action: r.WinnersExport,
			},
			{
				Name:  "clear",
				Usage: "Delete every winner record",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm deleting all winner records",
					},
				},
				Action: r.WinnersClear,
			},
		},
	}
}

// drawCommand runs a headless draw
func drawCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "draw",
		Usage: "Draw a winner for a prize, printing the reveal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "prize",
				Usage:    "Prize to draw",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "Override the reveal length (e.g. 2s)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the committed record as JSON",
			},
		},
		Action: r.Draw,
	}
}

// tuiCommand returns the top-level TUI command for running the raffle interactively.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive raffle TUI",
		Action:  r.TUI,
	}
}
