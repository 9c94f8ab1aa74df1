package estimator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/models"
)

var (
	// ErrNoURLs is the validation error raised before any network call. The
	// user sees NoURLsMessage instead.
	ErrNoURLs = errors.New("no valid URL to analyze")

	// ErrAnalysisInFlight is returned when analyze is triggered while a
	// request is already submitting. Nothing is queued or cancelled.
	ErrAnalysisInFlight = errors.New("analysis already in progress")

	ErrClosed = errors.New("estimator controller closed")
)

const (
	// NoURLsMessage is the user-facing text for ErrNoURLs.
	NoURLsMessage = "Please enter at least one valid URL."

	fallbackErrorMessage = "Analysis failed. Please check the backend service."
)

// State is the lifecycle of the last analyze call.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	labelIdle     = "Estimate Token"
	labelLoading  = "Analyzing..."
	labelFullSite = "Analyzing Full Site..."
)

// Form holds the user inputs. ManualURLs always has at least one field.
type Form struct {
	Mode       models.Mode `json:"mode"`
	MainURL    string      `json:"main_url"`
	ManualURLs []string    `json:"other_urls"`
	BatchText  string      `json:"batch_urls"`
}

func (f Form) clone() Form {
	f.ManualURLs = append([]string(nil), f.ManualURLs...)
	return f
}

// Snapshot is everything the presentation layer reads.
type Snapshot struct {
	State         State                  `json:"state"`
	Loading       bool                   `json:"loading"`
	CanSubmit     bool                   `json:"can_submit"`
	ButtonLabel   string                 `json:"button_label"`
	Form          Form                   `json:"form"`
	ShowProgress  bool                   `json:"show_progress"`
	Progress      int                    `json:"progress"`
	StatusMessage string                 `json:"status_message,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Result        *models.AnalysisResult `json:"result,omitempty"`
}

// ControllerConfig tunes the progress simulator. Nil Clock and Random fall
// back to the system clock and math/rand/v2.
type ControllerConfig struct {
	Progress SimulatorConfig
	Clock    Clock
	Random   func() float64
}

// Controller owns the analysis lifecycle for one user: the form, the loading
// flag, the last result or error, and the progress simulator.
type Controller struct {
	client  interfaces.EstimatorClient
	logger  interfaces.Logger
	metrics interfaces.MetricsCollector
	sim     *ProgressSimulator

	// simMu serializes reading (loading, mode) with applying it to sim, so a
	// stale pair can never be applied after a newer one.
	simMu sync.Mutex

	// pubMu is held from taking a snapshot until every subscriber has it, so
	// subscribers see snapshots in the order they were taken.
	pubMu sync.Mutex

	mu          sync.Mutex
	form        Form
	state       State
	result      *models.AnalysisResult
	errMsg      string
	cancel      context.CancelFunc
	done        chan struct{}
	closed      bool
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

type analysisRun struct {
	ctx    context.Context
	cancel context.CancelFunc
	req    models.AnalysisRequest
	done   chan struct{}
	start  time.Time
}

// NewController creates a controller in basic mode with one empty related-URL
// field. metrics may be nil.
func NewController(client interfaces.EstimatorClient, logger interfaces.Logger, metrics interfaces.MetricsCollector, cfg ControllerConfig) *Controller {
	c := &Controller{
		client:  client,
		logger:  logger,
		metrics: metrics,
		form: Form{
			Mode:       models.ModeBasic,
			ManualURLs: []string{""},
		},
		state:       StateIdle,
		subscribers: make(map[int]func(Snapshot)),
	}
	c.sim = NewProgressSimulator(cfg.Progress, cfg.Clock, cfg.Random, c.publish)
	return c
}

// Analyze runs one analysis and blocks until it completes. Validation errors,
// ErrAnalysisInFlight and ErrClosed are returned without contacting the
// service; otherwise the client error, if any, is returned after it has been
// published as the user-facing error.
func (c *Controller) Analyze(ctx context.Context) error {
	run, err := c.begin(ctx)
	if err != nil {
		return err
	}
	return c.execute(run)
}

// Start is Analyze without waiting for the service. The request outlives ctx
// (its values are kept) and is only cancelled by Close.
func (c *Controller) Start(ctx context.Context) error {
	run, err := c.begin(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	go func() {
		_ = c.execute(run)
	}()
	return nil
}

// Wait blocks until the in-flight request, if any, has completed.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Controller) begin(ctx context.Context) (*analysisRun, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		c.logger.Debug("Ignoring analyze while a request is in flight")
		return nil, ErrAnalysisInFlight
	}

	c.state = StateSubmitting
	c.errMsg = ""
	c.result = nil

	form := c.form.clone()
	urls := CollectURLs(form.Mode, form.MainURL, form.ManualURLs, form.BatchText)
	req, err := BuildRequest(form.Mode, urls)
	if err != nil {
		c.state = StateFailed
		c.errMsg = NoURLsMessage
		c.mu.Unlock()

		c.logger.Warn("Rejected analysis without URLs", "mode", form.Mode)
		if c.metrics != nil {
			c.metrics.RecordRejectedAnalysis(string(form.Mode))
		}
		c.syncSimulator()
		c.publish()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &analysisRun{
		ctx:    runCtx,
		cancel: cancel,
		req:    req,
		done:   make(chan struct{}),
		start:  time.Now(),
	}
	c.cancel = cancel
	c.done = run.done
	c.mu.Unlock()

	logger.WithContext(ctx, c.logger).Info("Starting token estimation",
		"mode", req.Mode,
		"main_url", req.MainURL,
		"url_count", len(urls),
	)
	if c.metrics != nil {
		c.metrics.IncAnalysesInFlight()
	}
	c.syncSimulator()
	c.publish()
	return run, nil
}

func (c *Controller) execute(run *analysisRun) error {
	defer close(run.done)

	result, err := c.client.Analyze(run.ctx, run.req)
	run.cancel()
	if err == nil && result == nil {
		err = errors.New(fallbackErrorMessage)
	}
	duration := time.Since(run.start)

	c.mu.Lock()
	c.cancel = nil
	if err != nil {
		c.state = StateFailed
		c.result = nil
		c.errMsg = userMessage(err)
	} else {
		c.state = StateSucceeded
		c.result = result
		c.errMsg = ""
	}
	c.mu.Unlock()

	log := logger.WithContext(run.ctx, c.logger).With("mode", run.req.Mode, "duration", duration)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		logger.WithError(log, err).Error("Token estimation failed")
	} else {
		log.Info("Token estimation completed",
			"page_count", len(result.Pages),
			"total_min_token", result.TotalMinToken,
			"total_max_token", result.TotalMaxToken,
		)
	}
	if c.metrics != nil {
		c.metrics.DecAnalysesInFlight()
	}
	c.recordAnalysis(run.req.Mode, outcome, duration)

	c.syncSimulator()
	c.publish()
	return err
}

// userMessage collapses transport and service failures into the single line
// shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrRequestFailed):
		return models.ErrRequestFailed.Error()
	case err.Error() != "":
		return err.Error()
	default:
		return fallbackErrorMessage
	}
}

func (c *Controller) recordAnalysis(mode models.Mode, outcome string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordAnalysis(string(mode), outcome, duration.Seconds())
	}
}

func (c *Controller) syncSimulator() {
	c.simMu.Lock()
	defer c.simMu.Unlock()

	c.mu.Lock()
	loading := c.state == StateSubmitting
	mode := c.form.Mode
	c.mu.Unlock()

	c.sim.Update(loading, mode)
}

// SetMode switches the estimation mode. Switching during a request only
// affects the simulator and rendering; the submitted request is unchanged.
func (c *Controller) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q", mode)
	}
	if err := c.mutate(func(f *Form) error {
		f.Mode = mode
		return nil
	}); err != nil {
		return err
	}
	c.syncSimulator()
	c.publish()
	return nil
}

func (c *Controller) SetMainURL(url string) error {
	return c.edit(func(f *Form) error {
		f.MainURL = url
		return nil
	})
}

func (c *Controller) SetManualURL(index int, url string) error {
	return c.edit(func(f *Form) error {
		if index < 0 || index >= len(f.ManualURLs) {
			return fmt.Errorf("related URL field %d out of range", index)
		}
		f.ManualURLs[index] = url
		return nil
	})
}

func (c *Controller) AddManualURL() error {
	return c.edit(func(f *Form) error {
		f.ManualURLs = append(f.ManualURLs, "")
		return nil
	})
}

// RemoveManualURL drops a related-URL field; the last remaining field is kept.
func (c *Controller) RemoveManualURL(index int) error {
	return c.edit(func(f *Form) error {
		if index < 0 || index >= len(f.ManualURLs) {
			return fmt.Errorf("related URL field %d out of range", index)
		}
		if len(f.ManualURLs) == 1 {
			return nil
		}
		f.ManualURLs = append(f.ManualURLs[:index], f.ManualURLs[index+1:]...)
		return nil
	})
}

func (c *Controller) SetBatchText(text string) error {
	return c.edit(func(f *Form) error {
		f.BatchText = text
		return nil
	})
}

// SetForm replaces every input at once.
func (c *Controller) SetForm(form Form) error {
	if !form.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", form.Mode)
	}
	if err := c.mutate(func(f *Form) error {
		*f = form.clone()
		if len(f.ManualURLs) == 0 {
			f.ManualURLs = []string{""}
		}
		return nil
	}); err != nil {
		return err
	}
	c.syncSimulator()
	c.publish()
	return nil
}

func (c *Controller) edit(fn func(*Form) error) error {
	if err := c.mutate(fn); err != nil {
		return err
	}
	c.publish()
	return nil
}

func (c *Controller) mutate(fn func(*Form) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return fn(&c.form)
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		State:   c.state,
		Loading: c.state == StateSubmitting,
		Form:    c.form.clone(),
		Error:   c.errMsg,
		Result:  c.result,
	}
	c.mu.Unlock()

	progress := c.sim.Snapshot()

	snap.CanSubmit = !snap.Loading && snap.Form.MainURL != ""
	snap.ShowProgress = snap.Loading && snap.Form.Mode == models.ModeFull
	snap.Progress = clampPercent(progress.Progress)
	switch {
	case !snap.Loading:
		snap.ButtonLabel = labelIdle
	case snap.Form.Mode == models.ModeFull:
		snap.ButtonLabel = labelFullSite
	default:
		snap.ButtonLabel = labelLoading
	}
	if snap.ShowProgress {
		snap.StatusMessage = progress.Message
	}
	return snap
}

func clampPercent(p float64) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(p)
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that caused the change, must not block and must
// not call back into the Controller.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Controller) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	if len(c.subscribers) == 0 {
		c.mu.Unlock()
		return
	}
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	snap := c.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}

// Close cancels the in-flight request, if any, and releases the simulator's
// timers. Further edits and analyze calls fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.subscribers = make(map[int]func(Snapshot))
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.sim.Close()
}
