package estimator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/mocks"
	"github.com/RuvinSL/token-estimator/pkg/models"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		TotalMinToken: 1200,
		TotalMaxToken: 1500,
		Pages: []models.PageResult{
			{
				URL:      "https://a.com",
				MinToken: 1200,
				MaxToken: 1500,
				Details: models.PageDetail{
					TextToken: &models.TokenRange{800, 1000},
					Features:  []string{"login"},
				},
			},
		},
	}
}

func newTestController(t *testing.T, metrics *mocks.MockMetricsCollector) (*Controller, *mocks.MockEstimatorClient, *fakeClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockEstimatorClient(ctrl)
	clock := &fakeClock{}

	cfg := ControllerConfig{Clock: clock, Random: fixedRandom(0.5)}
	var c *Controller
	if metrics != nil {
		c = NewController(client, logger.Nop(), metrics, cfg)
	} else {
		c = NewController(client, logger.Nop(), nil, cfg)
	}
	t.Cleanup(c.Close)
	return c, client, clock
}

func TestNewController_Defaults(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Loading)
	assert.False(t, snap.CanSubmit)
	assert.Equal(t, "Estimate Token", snap.ButtonLabel)
	assert.Equal(t, models.ModeBasic, snap.Form.Mode)
	assert.Equal(t, []string{""}, snap.Form.ManualURLs)
	assert.False(t, snap.ShowProgress)
	assert.Zero(t, snap.Progress)
	assert.Empty(t, snap.StatusMessage)
	assert.Nil(t, snap.Result)
}

func TestController_AnalyzeBasicSuccess(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))
	require.NoError(t, c.SetManualURL(0, "https://ignored.com"))

	result := sampleResult()
	client.EXPECT().
		Analyze(gomock.Any(), models.AnalysisRequest{Mode: models.ModeBasic, MainURL: "https://a.com"}).
		Return(result, nil)

	require.NoError(t, c.Analyze(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.False(t, snap.Loading)
	assert.True(t, snap.CanSubmit)
	assert.Empty(t, snap.Error)
	assert.Equal(t, result, snap.Result)
}

func TestController_AnalyzeSmartCollectsAllSources(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMode(models.ModeSmart))
	require.NoError(t, c.SetMainURL("https://a.com"))
	require.NoError(t, c.SetManualURL(0, "https://a.com/login"))
	require.NoError(t, c.AddManualURL())
	require.NoError(t, c.SetManualURL(1, "  "))
	require.NoError(t, c.SetBatchText("https://a.com/pricing\r\n\nhttps://a.com/login\n"))

	client.EXPECT().
		Analyze(gomock.Any(), models.AnalysisRequest{
			Mode:      models.ModeSmart,
			MainURL:   "https://a.com",
			OtherURLs: []string{"https://a.com/login", "https://a.com/pricing"},
		}).
		Return(sampleResult(), nil)

	require.NoError(t, c.Analyze(context.Background()))
	assert.Equal(t, StateSucceeded, c.Snapshot().State)
}

func TestController_AnalyzeWithoutURLs(t *testing.T) {
	for _, mode := range []models.Mode{models.ModeBasic, models.ModeSmart, models.ModeFull} {
		t.Run(string(mode), func(t *testing.T) {
			c, _, clock := newTestController(t, nil)
			require.NoError(t, c.SetMode(mode))
			require.NoError(t, c.SetMainURL("   "))

			err := c.Analyze(context.Background())

			assert.ErrorIs(t, err, ErrNoURLs)
			assert.NotEqual(t, NoURLsMessage, err.Error())
			snap := c.Snapshot()
			assert.Equal(t, StateFailed, snap.State)
			assert.Equal(t, "Please enter at least one valid URL.", snap.Error)
			assert.False(t, snap.Loading)
			assert.Nil(t, snap.Result)
			assert.Zero(t, clock.tickerCount())
		})
	}
}

func TestController_AnalyzeServiceFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "error status",
			err:      fmt.Errorf("%w: status %d", models.ErrRequestFailed, 500),
			expected: "Request failed",
		},
		{
			name:     "transport error",
			err:      errors.New("analysis service error: connection refused"),
			expected: "analysis service error: connection refused",
		},
		{
			name:     "empty message",
			err:      errors.New(""),
			expected: "Analysis failed. Please check the backend service.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, client, _ := newTestController(t, nil)
			require.NoError(t, c.SetMainURL("https://a.com"))
			client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			err := c.Analyze(context.Background())

			assert.Equal(t, tt.err, err)
			snap := c.Snapshot()
			assert.Equal(t, StateFailed, snap.State)
			assert.Equal(t, tt.expected, snap.Error)
			assert.Nil(t, snap.Result)
			assert.False(t, snap.Loading)
		})
	}
}

func TestController_NilResultIsFailure(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, nil)

	assert.Error(t, c.Analyze(context.Background()))
	assert.Equal(t, fallbackErrorMessage, c.Snapshot().Error)
}

func TestController_NewSubmitClearsPreviousOutcome(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))

	release := make(chan struct{})
	gomock.InOrder(
		client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, models.ErrRequestFailed),
		client.EXPECT().Analyze(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
				<-release
				return sampleResult(), nil
			}),
	)

	require.Error(t, c.Analyze(context.Background()))
	require.Equal(t, "Request failed", c.Snapshot().Error)

	require.NoError(t, c.Start(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, StateSubmitting, snap.State)
	assert.Empty(t, snap.Error)
	assert.Nil(t, snap.Result)

	close(release)
	c.Wait()
	assert.Equal(t, StateSucceeded, c.Snapshot().State)
}

func TestController_RejectsReentrantAnalyze(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))

	release := make(chan struct{})
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			<-release
			return sampleResult(), nil
		}).
		Times(1)

	require.NoError(t, c.Start(context.Background()))

	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.CanSubmit)
	assert.Equal(t, "Analyzing...", snap.ButtonLabel)
	assert.False(t, snap.ShowProgress)

	assert.ErrorIs(t, c.Analyze(context.Background()), ErrAnalysisInFlight)
	assert.ErrorIs(t, c.Start(context.Background()), ErrAnalysisInFlight)
	assert.Equal(t, StateSubmitting, c.Snapshot().State)

	close(release)
	c.Wait()

	snap = c.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "Estimate Token", snap.ButtonLabel)
}

func TestController_FullModeProgress(t *testing.T) {
	c, client, clock := newTestController(t, nil)
	require.NoError(t, c.SetMode(models.ModeFull))
	require.NoError(t, c.SetMainURL("https://a.com"))

	release := make(chan struct{})
	result := sampleResult()
	result.FullMinToken = intPtr(9000)
	result.FullMaxToken = intPtr(12000)
	client.EXPECT().
		Analyze(gomock.Any(), models.AnalysisRequest{Mode: models.ModeFull, MainURL: "https://a.com"}).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			<-release
			return result, nil
		})

	require.NoError(t, c.Start(context.Background()))

	snap := c.Snapshot()
	assert.True(t, snap.ShowProgress)
	assert.Equal(t, "Analyzing Full Site...", snap.ButtonLabel)
	assert.Zero(t, snap.Progress)
	assert.Equal(t, StatusMessages[0], snap.StatusMessage)

	tick(t, clock.ticker(t, DefaultTickInterval))
	require.Eventually(t, func() bool {
		return c.Snapshot().Progress == 2
	}, time.Second, 5*time.Millisecond)

	tick(t, clock.ticker(t, DefaultMessageInterval))
	require.Eventually(t, func() bool {
		return c.Snapshot().StatusMessage == StatusMessages[5]
	}, time.Second, 5*time.Millisecond)

	close(release)
	c.Wait()

	snap = c.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.False(t, snap.ShowProgress)
	assert.Empty(t, snap.StatusMessage)
	assert.Equal(t, 100, snap.Progress)

	timers := clock.timerList()
	require.Len(t, timers, 1)
	timers[0].fire()
	assert.Zero(t, c.Snapshot().Progress)
}

func TestController_ModeSwitchDuringRequest(t *testing.T) {
	c, client, clock := newTestController(t, nil)
	require.NoError(t, c.SetMode(models.ModeFull))
	require.NoError(t, c.SetMainURL("https://a.com"))

	release := make(chan struct{})
	client.EXPECT().
		Analyze(gomock.Any(), models.AnalysisRequest{Mode: models.ModeFull, MainURL: "https://a.com"}).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			<-release
			return sampleResult(), nil
		})

	require.NoError(t, c.Start(context.Background()))
	tick(t, clock.ticker(t, DefaultTickInterval))
	require.Eventually(t, func() bool {
		return c.Snapshot().Progress > 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SetMode(models.ModeBasic))

	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, snap.ShowProgress)
	assert.Zero(t, snap.Progress)
	assert.Equal(t, "Analyzing...", snap.ButtonLabel)
	assert.True(t, clock.ticker(t, DefaultTickInterval).stopped.Load())

	close(release)
	c.Wait()

	assert.Equal(t, StateSucceeded, c.Snapshot().State)
	assert.Zero(t, c.Snapshot().Progress)
	assert.Empty(t, clock.timerList())
}

func TestController_CloseCancelsInFlightRequest(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))

	started := make(chan struct{})
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})

	require.NoError(t, c.Start(context.Background()))
	<-started

	c.Close()
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, context.Canceled.Error(), snap.Error)

	assert.ErrorIs(t, c.Analyze(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.SetMainURL("https://b.com"), ErrClosed)
}

func TestController_StartOutlivesCallerContext(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))

	ctx, cancel := context.WithCancel(logger.ContextWithRequestID(context.Background(), "req-1"))
	release := make(chan struct{})
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			assert.Equal(t, "req-1", logger.RequestIDFromContext(ctx))
			return sampleResult(), nil
		})

	require.NoError(t, c.Start(ctx))
	cancel()
	close(release)
	c.Wait()

	assert.Equal(t, StateSucceeded, c.Snapshot().State)
}

func TestController_FormEditing(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	assert.Error(t, c.SetManualURL(1, "x"))
	assert.Error(t, c.RemoveManualURL(-1))

	require.NoError(t, c.SetManualURL(0, "a"))
	require.NoError(t, c.AddManualURL())
	require.NoError(t, c.SetManualURL(1, "b"))
	require.NoError(t, c.AddManualURL())
	require.NoError(t, c.SetManualURL(2, "c"))

	require.NoError(t, c.RemoveManualURL(1))
	assert.Equal(t, []string{"a", "c"}, c.Snapshot().Form.ManualURLs)

	require.NoError(t, c.RemoveManualURL(0))
	require.NoError(t, c.RemoveManualURL(0))
	assert.Equal(t, []string{"c"}, c.Snapshot().Form.ManualURLs)

	assert.Error(t, c.SetMode("everything"))
	assert.Equal(t, models.ModeBasic, c.Snapshot().Form.Mode)

	require.NoError(t, c.SetForm(Form{Mode: models.ModeSmart, MainURL: "https://a.com"}))
	snap := c.Snapshot()
	assert.Equal(t, models.ModeSmart, snap.Form.Mode)
	assert.Equal(t, []string{""}, snap.Form.ManualURLs)
	assert.True(t, snap.CanSubmit)

	assert.Error(t, c.SetForm(Form{Mode: "bogus"}))
}

func TestController_RejectsNonCanonicalModes(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	for _, mode := range []models.Mode{"FULL", " smart ", "Basic", ""} {
		assert.Error(t, c.SetMode(mode), "mode %q", mode)
		assert.Error(t, c.SetForm(Form{Mode: mode, MainURL: "https://a.com"}), "mode %q", mode)
	}
	assert.Equal(t, models.ModeBasic, c.Snapshot().Form.Mode)
	assert.Empty(t, c.Snapshot().Form.MainURL)
}

func TestController_SnapshotIsDetached(t *testing.T) {
	c, _, _ := newTestController(t, nil)
	require.NoError(t, c.SetManualURL(0, "a"))

	snap := c.Snapshot()
	snap.Form.ManualURLs[0] = "mutated"

	assert.Equal(t, "a", c.Snapshot().Form.ManualURLs[0])
}

func TestController_CanSubmitUsesRawMainURL(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	require.NoError(t, c.SetMainURL(" "))
	assert.True(t, c.Snapshot().CanSubmit)

	require.NoError(t, c.SetMainURL(""))
	assert.False(t, c.Snapshot().CanSubmit)
}

func TestController_Subscribe(t *testing.T) {
	c, client, _ := newTestController(t, nil)

	var mu sync.Mutex
	var states []State
	unsubscribe := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	})

	require.NoError(t, c.SetMainURL("https://a.com"))
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(sampleResult(), nil)
	require.NoError(t, c.Analyze(context.Background()))

	unsubscribe()
	require.NoError(t, c.SetMainURL("https://b.com"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateIdle, StateSubmitting, StateSucceeded}, states)
}

func TestController_SubscribersSeeSnapshotsInOrder(t *testing.T) {
	c, client, _ := newTestController(t, nil)
	require.NoError(t, c.SetMainURL("https://a.com"))

	release := make(chan struct{})
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
			<-release
			return sampleResult(), nil
		})

	var mu sync.Mutex
	var states []State
	entered := make(chan struct{})
	hold := make(chan struct{})
	var once sync.Once
	c.Subscribe(func(s Snapshot) {
		if s.Form.MainURL == "https://edited.com" {
			once.Do(func() {
				close(entered)
				<-hold
			})
		}
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	})

	require.NoError(t, c.Start(context.Background()))

	// an edit made mid-request is still being delivered when the request ends
	edited := make(chan struct{})
	go func() {
		defer close(edited)
		assert.NoError(t, c.SetMainURL("https://edited.com"))
	}()
	<-entered
	close(release)
	time.Sleep(20 * time.Millisecond)
	close(hold)
	<-edited
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	assert.Equal(t, StateSucceeded, states[len(states)-1])
	assert.Equal(t, []State{StateSubmitting, StateSubmitting, StateSucceeded}, states)
}

func TestController_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetricsCollector(ctrl)
	c, client, _ := newTestController(t, metrics)
	require.NoError(t, c.SetMainURL("https://a.com"))

	gomock.InOrder(
		metrics.EXPECT().IncAnalysesInFlight(),
		metrics.EXPECT().DecAnalysesInFlight(),
		metrics.EXPECT().RecordAnalysis("basic", "success", gomock.Any()),
	)
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(sampleResult(), nil)
	require.NoError(t, c.Analyze(context.Background()))

	metrics.EXPECT().RecordRejectedAnalysis("basic")
	require.NoError(t, c.SetMainURL(""))
	assert.ErrorIs(t, c.Analyze(context.Background()), ErrNoURLs)

	gomock.InOrder(
		metrics.EXPECT().IncAnalysesInFlight(),
		metrics.EXPECT().DecAnalysesInFlight(),
		metrics.EXPECT().RecordAnalysis("basic", "failure", gomock.Any()),
	)
	require.NoError(t, c.SetMainURL("https://a.com"))
	client.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, models.ErrRequestFailed)
	assert.Error(t, c.Analyze(context.Background()))
}
