package estimator

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/RuvinSL/token-estimator/pkg/models"
)

const (
	notApplicable = "N/A"
	noFeatures    = "None"
)

// ResultView is the display form of an AnalysisResult. Absent token ranges
// read "N/A" and an empty feature list reads "None".
type ResultView struct {
	TotalRange string     `json:"total_range"`
	ShowFull   bool       `json:"show_full"`
	FullRange  string     `json:"full_range,omitempty"`
	Pages      []PageView `json:"pages"`
}

type PageView struct {
	URL          string `json:"url"`
	TokenRange   string `json:"token_range"`
	TextToken    string `json:"text_token"`
	FormToken    string `json:"form_token"`
	ButtonToken  string `json:"button_token"`
	FeatureToken string `json:"feature_token"`
	Features     string `json:"features"`
	Error        string `json:"error,omitempty"`
}

// NewResultView builds the view for result under the currently selected mode.
// It returns nil when there is no result.
func NewResultView(result *models.AnalysisResult, mode models.Mode) *ResultView {
	if result == nil {
		return nil
	}

	view := &ResultView{
		TotalRange: formatRange(result.TotalMinToken, result.TotalMaxToken),
		ShowFull:   mode == models.ModeFull,
		Pages:      make([]PageView, 0, len(result.Pages)),
	}
	if view.ShowFull {
		view.FullRange = formatOptionalRange(result.FullMinToken, result.FullMaxToken)
	}

	for _, page := range result.Pages {
		d := page.Details
		view.Pages = append(view.Pages, PageView{
			URL:          page.URL,
			TokenRange:   formatRange(page.MinToken, page.MaxToken),
			TextToken:    formatTokenRange(d.TextToken),
			FormToken:    formatTokenRange(d.FormToken),
			ButtonToken:  formatTokenRange(d.ButtonToken),
			FeatureToken: formatTokenRange(d.FeatureToken),
			Features:     formatFeatures(d.Features),
			Error:        d.Error,
		})
	}
	return view
}

var reportTemplate = template.Must(template.New("report").Parse(
	`Total Token Estimate: {{.TotalRange}}
{{- if .ShowFull}}
Full Website Estimate: {{.FullRange}}
{{- end}}
Details:
{{- range .Pages}}

  Page: {{.URL}}
  Token Range: {{.TokenRange}}
  Text Token: {{.TextToken}}
  Form Token: {{.FormToken}}
  Button Token: {{.ButtonToken}}
  Feature Token: {{.FeatureToken}}
  Features: {{.Features}}
{{- if .Error}}
  Error: {{.Error}}
{{- end}}
{{- end}}
`))

// RenderReport writes the plain-text breakdown of result. Nothing is written
// when result is nil.
func RenderReport(w io.Writer, result *models.AnalysisResult, mode models.Mode) error {
	view := NewResultView(result, mode)
	if view == nil {
		return nil
	}
	if err := reportTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func formatRange(lo, hi int) string {
	return models.TokenRange{lo, hi}.String()
}

func formatTokenRange(r *models.TokenRange) string {
	if r == nil {
		return notApplicable
	}
	return r.String()
}

func formatOptionalRange(lo, hi *int) string {
	if lo == nil && hi == nil {
		return notApplicable
	}
	return optionalInt(lo) + " ~ " + optionalInt(hi)
}

func optionalInt(v *int) string {
	if v == nil {
		return notApplicable
	}
	return strconv.Itoa(*v)
}

func formatFeatures(features []string) string {
	if len(features) == 0 {
		return noFeatures
	}
	return strings.Join(features, ", ")
}
