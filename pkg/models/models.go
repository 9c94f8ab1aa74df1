package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRequestFailed is returned when the analysis service answers with a
// status outside the 2xx range. The body is not interpreted.
var ErrRequestFailed = errors.New("Request failed")

// Mode selects which pages are analyzed and which result fields apply.
type Mode string

const (
	ModeBasic Mode = "basic"
	ModeSmart Mode = "smart"
	ModeFull  Mode = "full"
)

// ModeOption describes a mode for the selector.
type ModeOption struct {
	Label       string `json:"label"`
	Value       Mode   `json:"value"`
	Description string `json:"description"`
}

// Modes lists the selectable modes in display order.
var Modes = []ModeOption{
	{
		Label:       "Basic",
		Value:       ModeBasic,
		Description: "Estimate tokens for the current page only (all text, structure, and features).",
	},
	{
		Label:       "Smart",
		Value:       ModeSmart,
		Description: "Estimate tokens for the current page and all user-added related pages (e.g. login, register, feature pages, etc.).",
	},
	{
		Label:       "Full",
		Value:       ModeFull,
		Description: "Estimate tokens for the entire website (current page + all discovered pages).",
	},
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBasic, ModeSmart, ModeFull:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q: expected basic, smart or full", s)
	}
}

// Valid reports whether m is exactly one of the three modes. Use ParseMode
// for user input.
func (m Mode) Valid() bool {
	switch m {
	case ModeBasic, ModeSmart, ModeFull:
		return true
	default:
		return false
	}
}

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	Mode      Mode     `json:"mode"`
	MainURL   string   `json:"main_url"`
	OtherURLs []string `json:"other_urls,omitempty"`
}

// MarshalJSON writes other_urls only in smart mode, where it is always
// present (possibly empty). Other modes never carry the key.
func (r AnalysisRequest) MarshalJSON() ([]byte, error) {
	type wire struct {
		Mode      Mode      `json:"mode"`
		MainURL   string    `json:"main_url"`
		OtherURLs *[]string `json:"other_urls,omitempty"`
	}

	w := wire{Mode: r.Mode, MainURL: r.MainURL}
	if r.Mode == ModeSmart {
		others := r.OtherURLs
		if others == nil {
			others = []string{}
		}
		w.OtherURLs = &others
	}
	return json.Marshal(w)
}

// TokenRange is a [min, max] pair as sent by the analysis service.
type TokenRange [2]int

func (r TokenRange) Min() int { return r[0] }
func (r TokenRange) Max() int { return r[1] }

func (r TokenRange) String() string {
	return fmt.Sprintf("%d ~ %d", r[0], r[1])
}

// PageDetail holds the per-category breakdown of a page. A nil range means
// the category does not apply and must not be read as zero.
type PageDetail struct {
	TextToken    *TokenRange `json:"text_token,omitempty"`
	FormToken    *TokenRange `json:"form_token,omitempty"`
	ButtonToken  *TokenRange `json:"button_token,omitempty"`
	FeatureToken *TokenRange `json:"feature_token,omitempty"`
	Features     []string    `json:"features"`
	FormCount    *int        `json:"form_count,omitempty"`
	ButtonCount  *int        `json:"button_count,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// PageResult represents the estimate for a single page
type PageResult struct {
	URL      string     `json:"url"`
	MinToken int        `json:"min_token"`
	MaxToken int        `json:"max_token"`
	Details  PageDetail `json:"details"`
}

// AnalysisResult represents the complete estimation result
type AnalysisResult struct {
	Mode          Mode         `json:"mode,omitempty"`
	TotalMinToken int          `json:"total_min_token"`
	TotalMaxToken int          `json:"total_max_token"`
	FullMinToken  *int         `json:"full_min_token,omitempty"`
	FullMaxToken  *int         `json:"full_max_token,omitempty"`
	Pages         []PageResult `json:"pages"`
}

type ErrorResponse struct {
	Error      string    `json:"error"`
	StatusCode int       `json:"status_code"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
