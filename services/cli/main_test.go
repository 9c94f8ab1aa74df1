package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/httpclient"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the progress subscriber and the test goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected options
	}{
		{
			name:     "defaults",
			args:     []string{"--url", "https://a.com"},
			expected: options{mode: models.ModeBasic, mainURL: "https://a.com", logLevel: "warn"},
		},
		{
			name: "smart with repeated others",
			args: []string{"-m", "SMART", "-u", "https://a.com", "-o", "https://a.com/x", "--other", "https://a.com/y", "-b", "urls.txt"},
			expected: options{
				mode:      models.ModeSmart,
				mainURL:   "https://a.com",
				others:    []string{"https://a.com/x", "https://a.com/y"},
				batchFile: "urls.txt",
				logLevel:  "warn",
			},
		},
		{
			name:     "positional url",
			args:     []string{"--mode", "full", "https://a.com", "--log-level", "debug", "--service-url", "http://svc:8000"},
			expected: options{mode: models.ModeFull, mainURL: "https://a.com", serviceURL: "http://svc:8000", logLevel: "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *opts)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags([]string{"--mode", "everything"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"--nope"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"--help"}, io.Discard)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		percent  int
		expected string
	}{
		{0, "[..........] 0% msg"},
		{42, "[####......] 42% msg"},
		{90, "[#########.] 90% msg"},
		{100, "[##########] 100% msg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatProgress(tt.percent, "msg"))
	}
}

func TestReadBatch(t *testing.T) {
	text, err := readBatch("", nil)
	require.NoError(t, err)
	assert.Empty(t, text)

	text, err = readBatch("-", strings.NewReader("https://a.com/x\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/x\n", text)

	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.com/y"), 0o600))
	text, err = readBatch(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/y", text)

	_, err = readBatch(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestRun_SmartReport(t *testing.T) {
	var received models.AnalysisRequest
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_min_token": 1200, "total_max_token": 1500,
			"pages": [{"url": "https://a.com", "min_token": 1200, "max_token": 1500,
				"details": {"text_token": [800, 1000], "features": []}}]
		}`))
	}))
	defer service.Close()

	opts := &options{
		mode:      models.ModeSmart,
		mainURL:   "https://a.com",
		others:    []string{"https://a.com/login"},
		batchFile: "-",
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), opts, httpclient.New(service.URL, 0, logger.Nop()), logger.Nop(),
		estimator.SimulatorConfig{}, strings.NewReader("https://a.com/pricing\nhttps://a.com\n"), &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, models.ModeSmart, received.Mode)
	assert.Equal(t, []string{"https://a.com/login", "https://a.com/pricing"}, received.OtherURLs)
	assert.True(t, strings.HasPrefix(stdout.String(), "Total Token Estimate: 1200 ~ 1500\nDetails:\n"))
	assert.Contains(t, stdout.String(), "  Features: None")
	assert.Empty(t, stderr.String())
}

func TestRun_FullModeDrawsProgress(t *testing.T) {
	release := make(chan struct{})
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"total_min_token": 1, "total_max_token": 2, "full_min_token": 10, "full_max_token": 20, "pages": []}`))
	}))
	defer service.Close()

	stderr := &lockedBuffer{}
	var stdout bytes.Buffer
	errc := make(chan error, 1)
	go func() {
		errc <- run(context.Background(), &options{mode: models.ModeFull, mainURL: "https://a.com"},
			httpclient.New(service.URL, 0, logger.Nop()), logger.Nop(),
			estimator.SimulatorConfig{TickInterval: 5 * time.Millisecond, MessageInterval: 5 * time.Millisecond},
			nil, &stdout, stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "[#")
	}, 2*time.Second, 10*time.Millisecond)
	close(release)

	require.NoError(t, <-errc)
	assert.True(t, strings.HasSuffix(stderr.String(), "\n"))
	assert.Equal(t, "Total Token Estimate: 1 ~ 2\nFull Website Estimate: 10 ~ 20\nDetails:\n", stdout.String())
}

func TestRun_Failures(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer service.Close()
	client := httpclient.New(service.URL, 0, logger.Nop())

	tests := []struct {
		name     string
		opts     *options
		expected string
	}{
		{
			name:     "no urls",
			opts:     &options{mode: models.ModeBasic},
			expected: "Error: Please enter at least one valid URL.\n",
		},
		{
			name:     "service error",
			opts:     &options{mode: models.ModeBasic, mainURL: "https://a.com"},
			expected: "Error: Request failed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.opts, client, logger.Nop(), estimator.SimulatorConfig{}, nil, &stdout, &stderr)

			assert.Error(t, err)
			assert.Equal(t, tt.expected, stderr.String())
			assert.Empty(t, stdout.String())
		})
	}
}
