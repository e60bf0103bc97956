package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"autoapply-engine/internal/calendar"
	"autoapply-engine/internal/config"
	"autoapply-engine/internal/docs"
	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/ledger"
	"autoapply-engine/internal/pipeline"
	"autoapply-engine/internal/remind"
	"autoapply-engine/internal/secrets"
	"autoapply-engine/internal/source"
	"autoapply-engine/internal/source/alerts"
	"autoapply-engine/internal/source/indeed"
	"autoapply-engine/internal/source/linkedin"
	"autoapply-engine/internal/source/util"

	"github.com/urfave/cli/v3"
)

func dataDir() string {
	if d := os.Getenv("AUTOAPPLY_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := cmd.String("config")
	if path == "" {
		var err error
		path, err = config.EnsureUserConfig(dataDir(), filepath.Join("config", "config.yml"))
		if err != nil {
			return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load (%s): %w", path, err)
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir()
	}
	return cfg, nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// flag overrides before validation, so overridden values get checked too
	if v := cmd.String("keywords"); v != "" {
		cfg.Search.Keywords = v
	}
	if v := cmd.StringSlice("location"); len(v) > 0 {
		cfg.Search.Locations = v
	}
	if v := cmd.Int("pages"); v > 0 {
		cfg.Search.PagesPerSource = v
	}
	if v := cmd.Int("batch"); v > 0 {
		cfg.Search.BatchSize = v
	}

	cfg, validation := config.NormalizeAndValidate(cfg)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		return errors.New("config invalid:\n- " + strings.Join(validation.Errors, "\n- "))
	}

	// after validation: an explicit --min-score 0 must survive the default
	if v := cmd.Int("min-score"); v >= 0 {
		cfg.Search.MinScore = v
	}

	limiter := util.NewHostLimiter(2, 4)
	var sources []source.Source
	if cfg.Sources.Indeed.Enabled {
		sources = append(sources, indeed.New(indeed.Config{}, limiter))
	}
	if cfg.Sources.LinkedIn.Enabled {
		sources = append(sources, linkedin.New(linkedin.Config{HydrateDescriptions: true}, limiter))
	}
	if cfg.Sources.Alerts.Enabled {
		account := secrets.IMAPKeyringAccount(cfg)
		sources = append(sources, alerts.New(alerts.Config{
			Host:        cfg.Sources.Alerts.IMAPHost,
			Port:        cfg.Sources.Alerts.IMAPPort,
			Username:    cfg.Sources.Alerts.Username,
			Mailbox:     cfg.Sources.Alerts.Mailbox,
			MaxMessages: cfg.Sources.Alerts.MaxMessages,
		}, func() (string, error) {
			return secrets.GetIMAPPassword(account)
		}))
	}

	led, err := ledger.Open(filepath.Join(cfg.App.DataDir, "ledger"))
	if err != nil {
		return err
	}
	defer led.Close()

	outDir := cfg.Documents.OutputDir
	if outDir == "" {
		outDir = filepath.Join(cfg.App.DataDir, "artifacts")
	}
	customizer := docs.NewCustomizer(
		cfg.Documents.ResumeTemplate,
		cfg.Documents.CoverLetterTemplate,
		outDir,
	)

	var followUp pipeline.FollowUpScheduler
	if cfg.Calendar.Enabled {
		creds := calendar.NewKeyringCredentials(cfg.Calendar.Account, cfg.Calendar.TokenURL)
		followUp = &remind.Scheduler{
			Provider: calendar.NewHTTPProvider(cfg.Calendar.EventsURL, creds),
			Timezone: cfg.Calendar.Timezone,
		}
	}

	orc := &pipeline.Orchestrator{
		Sources:      sources,
		Docs:         customizer,
		FollowUp:     followUp,
		Ledger:       led,
		FollowUpDays: cfg.Calendar.FollowUpDays,
		ExportPath:   filepath.Join(cfg.App.DataDir, "applied_jobs.csv"),
		OnFiltered:   printTopListings,
	}

	rep, err := orc.Run(ctx, pipeline.Options{
		Keywords:       cfg.Search.Keywords,
		Locations:      cfg.Search.Locations,
		PagesPerSource: cfg.Search.PagesPerSource,
		MinScore:       cfg.Search.MinScore,
		BatchSize:      cfg.Search.BatchSize,
		Force:          cmd.Bool("force"),
	})
	if err != nil {
		return fmt.Errorf("aborted: %w", err)
	}

	fmt.Printf("\n%s: applied=%d skipped=%d partial=%d\nledger: %s\n",
		rep.Status(), rep.Applied, rep.Skipped, rep.Partial, rep.LedgerPath)
	return nil
}

func printTopListings(top []domain.Listing) {
	if len(top) == 0 {
		fmt.Println("No listings matched the search profile.")
		return
	}
	fmt.Println("Top matching jobs:")
	for i, l := range top {
		fmt.Printf("%2d. %s at %s (%s) - match score: %d\n",
			i+1, l.Title, l.Company, l.Location, l.Score)
	}
}

func secretSetAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pw := cmd.Args().First()
	if pw == "" {
		return errors.New("usage: autoapply secret set <password>")
	}
	account := secrets.IMAPKeyringAccount(cfg)
	if err := secrets.SetIMAPPassword(account, pw); err != nil {
		return err
	}
	fmt.Printf("stored IMAP password for %s\n", account)
	return nil
}

func secretDeleteAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	account := secrets.IMAPKeyringAccount(cfg)
	if err := secrets.DeleteIMAPPassword(account); err != nil {
		return err
	}
	fmt.Printf("deleted IMAP password for %s\n", account)
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	led, err := ledger.Open(filepath.Join(cfg.App.DataDir, "ledger"))
	if err != nil {
		return err
	}
	defer led.Close()

	path, err := led.ExportCSV(ctx, cmd.String("output"))
	if err != nil {
		return err
	}
	fmt.Printf("ledger exported to %s\n", path)
	return nil
}
