// Package view holds the review form's state and the submit round trip to the predictor.
package view

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	SubmitLabelIdle    = "Analyze Sentiment"
	SubmitLabelPending = "Analyzing..."
)

type Predictor interface {
	Predict(ctx context.Context, review string) (string, error)
}

// State is a copy of the controller's state cells.
type State struct {
	Review  string
	Result  Result
	Label   string // raw predictor label behind Result, empty unless a prediction arrived
	Pending bool
}

func (s State) CharCount() int {
	return utf8.RuneCountInString(s.Review)
}

func (s State) CanSubmit() bool {
	return !s.Pending && strings.TrimSpace(s.Review) != ""
}

func (s State) SubmitLabel() string {
	if s.Pending {
		return SubmitLabelPending
	}
	return SubmitLabelIdle
}

func (s State) Badge() (Badge, bool) {
	return RenderBadge(s.Result)
}

// Controller owns one review form. At most one prediction is in flight at a time;
// Close cancels it and stops any further state updates.
type Controller struct {
	predictor Predictor

	mu     sync.Mutex
	state  State
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController(predictor Predictor) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{predictor: predictor, ctx: ctx, cancel: cancel}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetReview replaces the review text. Edits are accepted while a prediction is
// pending; the in-flight request keeps the text captured at submit time.
func (c *Controller) SetReview(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Review = text
}

// Submit starts a prediction for the current review. It returns false, leaving the
// state untouched, when the review is blank, a prediction is already pending, or the
// controller is closed. Otherwise Pending is set and the previous result cleared
// before Submit returns; the returned channel closes once the prediction resolves.
func (c *Controller) Submit() (<-chan struct{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.state.CanSubmit() {
		return nil, false
	}

	c.state.Pending = true
	c.state.Result = ResultUnset
	c.state.Label = ""
	review := c.state.Review

	done := make(chan struct{})
	c.wg.Add(1)
	go c.predict(review, done)

	return done, true
}

func (c *Controller) predict(review string, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)

	label, err := c.predictor.Predict(c.ctx, review)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	defer func() { c.state.Pending = false }()

	if err != nil {
		slog.Error("[ViewController] Error communicating with backend",
			slog.String("error", err.Error()))
		c.state.Result = ResultError
		return
	}

	c.state.Label = label
	c.state.Result = ParseResult(label)
	if c.state.Result == ResultUnrecognized {
		slog.Warn("[ViewController] Predictor returned an unrecognized label",
			slog.String("label", label))
	}
}

// Close cancels any in-flight prediction and waits for it to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
