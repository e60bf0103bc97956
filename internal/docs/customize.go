package docs

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"autoapply-engine/internal/domain"
)

const (
	objectiveMarker = "[OBJECTIVE]"
	dateMarker      = "[DATE]"
	companyMarker   = "[COMPANY_NAME]"
	titleMarker     = "[JOB_TITLE]"

	// keywords shorter than this are too noisy to emphasize
	minEmphasisLen = 4
)

// Customizer renders per-job resumes and cover letters from the loaded
// templates. A template that failed to load leaves its slot nil; the
// corresponding operation then returns "" instead of raising past the
// pipeline boundary.
type Customizer struct {
	resume *Document
	cover  *Document
	outDir string
	now    func() time.Time
}

func NewCustomizer(resumePath, coverPath, outDir string) *Customizer {
	c := &Customizer{outDir: outDir, now: time.Now}

	var err error
	if c.resume, err = LoadTemplate(resumePath); err != nil {
		log.Printf("[docs] resume template: %v", err)
	}
	if c.cover, err = LoadTemplate(coverPath); err != nil {
		log.Printf("[docs] cover letter template: %v", err)
	}
	return c
}

// CustomizeResume rewrites the objective paragraph around the job and
// emphasizes extracted keywords everywhere else. Returns the artifact path,
// or "" if the template is missing or the write failed.
func (c *Customizer) CustomizeResume(l domain.Listing, ks domain.KeywordSet) string {
	if c.resume == nil {
		log.Printf("[docs] resume template not loaded; skipping %s at %s", l.Title, l.Company)
		return ""
	}

	out := Document{Paragraphs: make([]Paragraph, 0, len(c.resume.Paragraphs))}
	for _, p := range c.resume.Paragraphs {
		if strings.Contains(p.Text, objectiveMarker) {
			objective := fmt.Sprintf(
				"Experienced professional seeking the %s position at %s, bringing expertise in %s.",
				l.Title, l.Company, strings.Join(ks.Top(3), ", "))
			out.Paragraphs = append(out.Paragraphs, Paragraph{
				Text:  strings.ReplaceAll(p.Text, objectiveMarker, objective),
				Style: p.Style,
			})
			continue
		}
		out.Paragraphs = append(out.Paragraphs, Paragraph{
			Text:  emphasizeKeywords(p.Text, ks),
			Style: p.Style,
		})
	}

	path := c.artifactPath("Custom_Resume", l.Company)
	if err := out.Save(path); err != nil {
		log.Printf("[docs] resume save: %v", err)
		return ""
	}
	return path
}

// CustomizeCoverLetter substitutes the literal placeholder tokens. Missing
// keyword slots become the empty string, never a leftover marker.
func (c *Customizer) CustomizeCoverLetter(l domain.Listing, ks domain.KeywordSet) string {
	if c.cover == nil {
		log.Printf("[docs] cover letter template not loaded; skipping %s at %s", l.Title, l.Company)
		return ""
	}

	terms := ks.Terms()
	kw := func(i int) string {
		if i < len(terms) {
			return terms[i]
		}
		return ""
	}
	repl := strings.NewReplacer(
		dateMarker, c.now().Format("January 02, 2006"),
		companyMarker, l.Company,
		titleMarker, l.Title,
		"[KEYWORD1]", kw(0),
		"[KEYWORD2]", kw(1),
		"[KEYWORD3]", kw(2),
	)

	out := Document{Paragraphs: make([]Paragraph, 0, len(c.cover.Paragraphs))}
	for _, p := range c.cover.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, Paragraph{
			Text:  repl.Replace(p.Text),
			Style: p.Style,
		})
	}

	path := c.artifactPath("Cover_Letter", l.Company)
	if err := out.Save(path); err != nil {
		log.Printf("[docs] cover letter save: %v", err)
		return ""
	}
	return path
}

// artifactPath is deterministic given (doc type, company, current date) so a
// rerun on the same day overwrites instead of piling up copies.
func (c *Customizer) artifactPath(kind, company string) string {
	name := fmt.Sprintf("%s_%s_%s.yaml", kind, safeFileComponent(company), c.now().Format("20060102"))
	return filepath.Join(c.outDir, name)
}

func emphasizeKeywords(text string, ks domain.KeywordSet) string {
	for _, k := range ks {
		if len(k.Term) < minEmphasisLen {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(k.Term))
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, "**"+k.Term+"**")
	}
	return text
}

func safeFileComponent(s string) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}
