package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "autoapply",
		Usage: "search job boards, customize application documents, schedule follow-ups",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the search -> filter -> batch-apply -> record pipeline once",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "config file path (defaults to <data_dir>/config.yml)",
					},
					&cli.StringFlag{
						Name:  "keywords",
						Usage: "override search.keywords",
					},
					&cli.StringSliceFlag{
						Name:  "location",
						Usage: "override search.locations (repeatable)",
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "pages per source per location",
					},
					&cli.IntFlag{
						Name:  "min-score",
						Value: -1,
						Usage: "minimum keyword match score (default 2)",
					},
					&cli.IntFlag{
						Name:  "batch",
						Usage: "how many top listings to apply to",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "re-apply even if the ledger already has the listing",
					},
				},
				Action: runAction,
			},
			{
				Name:  "secret",
				Usage: "manage the IMAP alerts password in the OS keychain",
				Commands: []*cli.Command{
					{
						Name:      "set",
						ArgsUsage: "<password>",
						Flags:     []cli.Flag{&cli.StringFlag{Name: "config"}},
						Action:    secretSetAction,
					},
					{
						Name:   "delete",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "config"}},
						Action: secretDeleteAction,
					},
				},
			},
			{
				Name:  "export",
				Usage: "write the application ledger to a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config"},
					&cli.StringFlag{
						Name:  "output",
						Value: "applied_jobs.csv",
						Usage: "CSV output path",
					},
				},
				Action: exportAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
