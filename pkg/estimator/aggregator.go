package estimator

import (
	"strings"

	"github.com/RuvinSL/token-estimator/pkg/models"
)

// CollectURLs returns the URLs to analyze for mode, main URL first.
//
// Candidates are trimmed and empty ones dropped. Outside smart mode only the
// main URL is considered. In smart mode the manual fields follow the main URL,
// then one candidate per line of batchText; duplicates are removed by exact
// string comparison, keeping the first occurrence. An empty result is valid
// and has to be rejected by the caller.
func CollectURLs(mode models.Mode, mainURL string, manualURLs []string, batchText string) []string {
	candidates := []string{mainURL}
	if mode == models.ModeSmart {
		candidates = append(candidates, manualURLs...)
		candidates = append(candidates, splitLines(batchText)...)
	}

	seen := make(map[string]struct{}, len(candidates))
	urls := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		u := strings.TrimSpace(candidate)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// BuildRequest turns a collected URL set into the outbound payload.
// other_urls is only populated in smart mode.
func BuildRequest(mode models.Mode, urls []string) (models.AnalysisRequest, error) {
	if len(urls) == 0 {
		return models.AnalysisRequest{}, ErrNoURLs
	}

	req := models.AnalysisRequest{
		Mode:    mode,
		MainURL: urls[0],
	}
	if mode == models.ModeSmart {
		req.OtherURLs = append([]string{}, urls[1:]...)
	}
	return req, nil
}

// splitLines splits on \n; the trailing \r of CRLF input is removed by the
// trim in CollectURLs.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
