package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything an operator
// should hear about before a run.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Keywords = strings.Join(strings.Fields(out.Search.Keywords), " ")
	out.Search.Locations = trimList(out.Search.Locations)

	// defaults; an omitted min_score reads as 0 in YAML, so 0 takes the
	// default too (an explicit 0 comes in through the CLI flag instead)
	if out.Search.MinScore <= 0 {
		out.Search.MinScore = 2
	}
	if out.Search.PagesPerSource <= 0 {
		out.Search.PagesPerSource = 5
	}
	if out.Search.BatchSize <= 0 {
		out.Search.BatchSize = 5
	}
	if out.Calendar.FollowUpDays <= 0 {
		out.Calendar.FollowUpDays = 5
	}
	if out.Sources.Alerts.Mailbox == "" {
		out.Sources.Alerts.Mailbox = "INBOX"
	}

	// ---- Validation rules ----

	if strings.TrimSpace(out.Search.Keywords) == "" {
		res.addErr("search.keywords is required")
	}
	if len(out.Search.Locations) == 0 {
		res.addWarn("search.locations is empty; sources will be queried without a location")
	}
	if out.Search.PagesPerSource > 20 {
		res.addWarn("search.pages_per_source is %d; boards rarely return useful results that deep", out.Search.PagesPerSource)
	}

	if !out.Sources.Indeed.Enabled && !out.Sources.LinkedIn.Enabled && !out.Sources.Alerts.Enabled {
		res.addErr("no sources enabled: enable indeed, linkedin, or alerts")
	}

	if strings.TrimSpace(out.Documents.ResumeTemplate) == "" {
		res.addErr("documents.resume_template is required")
	}
	if strings.TrimSpace(out.Documents.CoverLetterTemplate) == "" {
		res.addErr("documents.cover_letter_template is required")
	}

	// alerts required fields if enabled (password is not here; it lives in the keychain)
	if out.Sources.Alerts.Enabled {
		if strings.TrimSpace(out.Sources.Alerts.IMAPHost) == "" {
			res.addErr("sources.alerts.imap_host is required when alerts are enabled")
		}
		if out.Sources.Alerts.IMAPPort == 0 {
			res.addErr("sources.alerts.imap_port is required when alerts are enabled")
		}
		if strings.TrimSpace(out.Sources.Alerts.Username) == "" {
			res.addErr("sources.alerts.username is required when alerts are enabled")
		}
	}

	if out.Calendar.Enabled {
		if strings.TrimSpace(out.Calendar.EventsURL) == "" {
			res.addErr("calendar.events_url is required when calendar is enabled")
		}
		if strings.TrimSpace(out.Calendar.Account) == "" {
			res.addErr("calendar.account is required when calendar is enabled")
		}
	} else {
		res.addWarn("calendar is disabled; follow-up reminders will be recorded as not set")
	}

	return out, res
}
