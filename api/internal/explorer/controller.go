package explorer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/facts"
)

// FallbackError is shown when a dispatch fails without a usable message.
const FallbackError = "Failed to generate description. Please check the API key or try again later."

// ErrBusy is returned by Begin while a request is already in flight.
var ErrBusy = errors.New("a description is already being generated")

// Dispatcher sends one request to the AI provider. curator.Engine satisfies it.
type Dispatcher interface {
	Describe(ctx context.Context, req artifact.Request) (string, error)
}

// Controller owns the page state of one user: the loading flag, the last
// error, the last result and the request that produced them.
type Controller struct {
	dispatcher   Dispatcher
	log          *zap.Logger
	factPool     []facts.HistoryFact
	factInterval time.Duration

	mu          sync.Mutex
	state       State
	request     *artifact.Request
	description string
	errMsg      string
	gen         uint64
	cycler      *facts.Cycler
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithFacts(pool []facts.HistoryFact, interval time.Duration) Option {
	return func(c *Controller) {
		c.factPool = pool
		c.factInterval = interval
	}
}

func NewController(d Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		dispatcher: d,
		log:        zap.NewNop(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending is a submission that has entered Loading but not yet been dispatched.
type Pending struct {
	c   *Controller
	gen uint64
	req artifact.Request
}

// Begin validates req and moves the controller to Loading, clearing the
// previous result and error. The dispatcher is not called; use Pending.Run.
func (c *Controller) Begin(req artifact.Request) (*Pending, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateLoading {
		return nil, ErrBusy
	}
	c.state = StateLoading
	c.description = ""
	c.errMsg = ""
	r := req
	c.request = &r
	c.gen++

	c.cycler = facts.NewCycler(c.factPool, c.factInterval)
	c.cycler.Start(context.Background())

	return &Pending{c: c, gen: c.gen, req: req}, nil
}

func (p *Pending) Request() artifact.Request { return p.req }

// Run performs the single provider round trip and records its outcome.
// The returned error is informational: it is already reflected in the
// controller's Error state.
func (p *Pending) Run(ctx context.Context) error {
	text, err := p.c.dispatcher.Describe(ctx, p.req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = artifact.NewServiceError("the model returned an empty description", nil)
	}
	p.c.finish(p.gen, text, err)
	return err
}

// Fail records err for a submission that will never be dispatched, so the
// controller leaves Loading without calling the dispatcher.
func (p *Pending) Fail(err error) {
	if err == nil {
		err = errors.New(FallbackError)
	}
	p.c.finish(p.gen, "", err)
}

// Submit is Begin followed by Run on the caller's goroutine.
func (c *Controller) Submit(ctx context.Context, req artifact.Request) error {
	p, err := c.Begin(req)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

func (c *Controller) finish(gen uint64, text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state != StateLoading {
		// superseded by a newer submission, or already settled
		return
	}
	c.stopCyclerLocked()
	if err != nil {
		c.state = StateError
		c.errMsg = ErrorMessage(err)
		c.log.Warn("describe failed",
			zap.String("artifact", c.request.Name),
			zap.Error(err),
		)
		return
	}
	c.state = StateResult
	c.description = text
	c.log.Info("describe done",
		zap.String("artifact", c.request.Name),
		zap.Int("chars", len(text)),
	)
}

func (c *Controller) stopCyclerLocked() {
	if c.cycler != nil {
		c.cycler.Stop()
		c.cycler = nil
	}
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return buildView(c.state, c.request, c.description, c.errMsg, c.cycler)
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoading
}

// Close stops the loading timer. A pending Run still records its result.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCyclerLocked()
}

// ErrorMessage converts a dispatch failure into text for the error panel.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *artifact.ServiceError
	if errors.As(err, &se) {
		if msg := strings.TrimSpace(se.Message); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackError
}
