// Package form drives the three-question idea form: it tracks which
// questions are answered, gates submission, sends one evaluation request per
// submit and keeps the rendered result.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/maxappraiser/appraiser-api/internal/models"
	"golang.org/x/text/language"
)

// Field names a question of the form
type Field string

const (
	FieldIdea    Field = "idea"
	FieldPlan    Field = "plan"
	FieldRoadmap Field = "roadmap"
)

// Fields lists the questions in the order they are asked
var Fields = []Field{FieldIdea, FieldPlan, FieldRoadmap}

var prompts = map[Field]string{
	FieldIdea:    "Describe your idea",
	FieldPlan:    "How will you implement it?",
	FieldRoadmap: "What is your roadmap?",
}

var (
	// ErrSubmissionInFlight is returned by Submit while an earlier submission has not finished
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrSubmitDisabled is returned by Submit while the roadmap is still empty
	ErrSubmitDisabled = errors.New("submit is disabled until the roadmap is answered")
	ErrUnknownField   = errors.New("unknown field")
)

// AlertError is the message shown to the user when a submission fails
type AlertError struct {
	Message string
	Status  int
	Err     error
}

func (e *AlertError) Error() string {
	return "Error: " + e.Message
}

func (e *AlertError) Unwrap() error {
	return e.Err
}

// Evaluator sends one evaluation request
type Evaluator interface {
	Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResponse, error)
}

// Question is a snapshot of one form question
type Question struct {
	Field    Field
	Prompt   string
	Text     string
	Answered bool
	Active   bool
}

type question struct {
	field    Field
	text     string
	answered bool
	active   bool
}

// Controller owns the form state. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	evaluator Evaluator
	locale    language.Tag
	questions []*question
	currency  string
	pending   bool
	result    *Result
}

// Option configures a Controller
type Option func(*Controller)

// WithLocale sets the locale used to format valuation amounts
func WithLocale(tag language.Tag) Option {
	return func(c *Controller) {
		c.locale = tag
	}
}

// WithCurrency preselects a currency code
func WithCurrency(code string) Option {
	return func(c *Controller) {
		c.currency = code
	}
}

// NewController creates a form with the first question active
func NewController(evaluator Evaluator, opts ...Option) *Controller {
	c := &Controller{
		evaluator: evaluator,
		locale:    language.English,
		currency:  models.DefaultCurrency,
	}
	for _, f := range Fields {
		c.questions = append(c.questions, &question{field: f})
	}
	c.questions[0].active = true

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input records text typed into field. A non-blank answer activates the next question.
func (c *Controller) Input(field Field, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(field)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	q := c.questions[idx]
	q.text = text
	q.answered = strings.TrimSpace(text) != ""

	if q.answered && idx+1 < len(c.questions) {
		c.questions[idx+1].active = true
	}
	return nil
}

// Questions returns a snapshot of every question in order
func (c *Controller) Questions() []Question {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Question, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, Question{
			Field:    q.field,
			Prompt:   prompts[q.field],
			Text:     q.text,
			Answered: q.answered,
			Active:   q.active,
		})
	}
	return out
}

func (c *Controller) SetCurrency(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currency = code
}

func (c *Controller) Currency() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currency
}

// Pending reports whether a submission is in flight
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SubmitEnabled reports whether the submit control is enabled: the roadmap is
// answered and nothing is in flight
func (c *Controller) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitEnabled()
}

func (c *Controller) submitEnabled() bool {
	return !c.pending && c.questions[c.indexOf(FieldRoadmap)].answered
}

// Result returns the rendered result and whether it is visible
func (c *Controller) Result() (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.result != nil
}

// Submit hides any previous result, sends the trimmed answers and renders the
// response. Failures come back as *AlertError and leave the result hidden.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if !c.submitEnabled() {
		c.mu.Unlock()
		return nil, ErrSubmitDisabled
	}

	c.pending = true
	c.result = nil
	req := &models.EvaluationRequest{
		Idea:     strings.TrimSpace(c.questions[0].text),
		Plan:     strings.TrimSpace(c.questions[1].text),
		Roadmap:  strings.TrimSpace(c.questions[2].text),
		Currency: c.currency,
	}
	locale := c.locale
	c.mu.Unlock()

	resp, err := c.evaluator.Evaluate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	if err != nil {
		var alert *AlertError
		if !errors.As(err, &alert) {
			alert = &AlertError{Message: err.Error(), Err: err}
		}
		return nil, alert
	}

	c.result = Render(resp, locale)
	return c.result, nil
}

func (c *Controller) indexOf(field Field) int {
	for i, q := range c.questions {
		if q.field == field {
			return i
		}
	}
	return -1
}
