package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/LJTian/TrendingDigest/internal/collector"
	"github.com/LJTian/TrendingDigest/internal/digest"
)

const subjectDateLayout = "Jan 2, 2006"

//go:embed templates/digest.html.tmpl
var digestTemplate string

// Renderer 把 Bundle 渲染成邮件 HTML，只输出启用的数据源
type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type sectionView struct {
	Heading string
	Items   []collector.NewsItem
	Failed  bool
	Reason  collector.Reason
}

type pageView struct {
	Subject  string
	Sections []sectionView
}

func (r *Renderer) HTML(b *digest.Bundle) (string, error) {
	view := pageView{Subject: Subject(b)}
	for _, s := range b.Enabled() {
		view.Sections = append(view.Sections, sectionView{
			Heading: strings.ToUpper(s.Source.String()),
			Items:   s.Items,
			Failed:  s.Failed(),
			Reason:  s.Reason,
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

// Subject 形如 "Your Daily Newsletter - Oct 19, 2026"
func Subject(b *digest.Bundle) string {
	period := b.Period
	if period == "" {
		period = digest.PeriodDaily
	}
	title := cases.Title(language.English).String(period)
	return fmt.Sprintf("Your %s Newsletter - %s", title, b.GeneratedAt.Format(subjectDateLayout))
}
