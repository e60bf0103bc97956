package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SourceToggle struct {
	Enabled bool `yaml:"enabled"`
}

type AlertsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	IMAPHost    string `yaml:"imap_host"`
	IMAPPort    int    `yaml:"imap_port"`
	Username    string `yaml:"username"`
	Mailbox     string `yaml:"mailbox"`
	MaxMessages int    `yaml:"max_messages"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Search struct {
		Keywords       string   `yaml:"keywords"`
		Locations      []string `yaml:"locations"`
		PagesPerSource int      `yaml:"pages_per_source"`
		MinScore       int      `yaml:"min_score"`
		BatchSize      int      `yaml:"batch_size"`
	} `yaml:"search"`

	Sources struct {
		Indeed   SourceToggle `yaml:"indeed"`
		LinkedIn SourceToggle `yaml:"linkedin"`
		Alerts   AlertsConfig `yaml:"alerts"`
	} `yaml:"sources"`

	Documents struct {
		ResumeTemplate      string `yaml:"resume_template"`
		CoverLetterTemplate string `yaml:"cover_letter_template"`
		OutputDir           string `yaml:"output_dir"`
	} `yaml:"documents"`

	Calendar struct {
		Enabled      bool   `yaml:"enabled"`
		EventsURL    string `yaml:"events_url"`
		TokenURL     string `yaml:"token_url"`
		Account      string `yaml:"account"`
		Timezone     string `yaml:"timezone"`
		FollowUpDays int    `yaml:"follow_up_days"`
	} `yaml:"calendar"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
