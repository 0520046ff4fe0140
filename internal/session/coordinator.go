package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
)

// ErrReauthCancelled settles requests dropped by ClearPendingRequests.
var ErrReauthCancelled = errors.New("re-authentication cancelled")

// 401s from the auth routes are answers, not expired sessions.
const authRoutePrefix = "/api/auth/"

// Prompter shows and hides the re-authentication prompt. Open and Close may
// read State but must not call the other Coordinator methods.
type Prompter interface {
	Open()
	Close()
}

type Gateway interface {
	Do(ctx context.Context, req *models.ProxyRequest) (*models.ProxyResponse, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// State is a snapshot of the coordinator.
type State struct {
	IsModalOpen bool
	Pending     int
}

type result struct {
	resp *models.ProxyResponse
	err  error
}

// PendingRequest is a call parked until re-authentication. It is settled
// exactly once, by replay or by ClearPendingRequests.
type PendingRequest struct {
	ID  string
	req *models.ProxyRequest
	ctx context.Context
	out chan result
}

func (p *PendingRequest) settle(resp *models.ProxyResponse, err error) {
	p.out <- result{resp: resp, err: err}
}

// Coordinator gates requests on session expiry. In Normal state calls go
// straight to the gateway; the first 401 switches to AwaitingReauth, opens
// the prompt and parks the call. Later calls are parked without touching the
// network until Reauthenticate replays them in FIFO order.
type Coordinator struct {
	gateway  Gateway
	prompter Prompter
	log      *zap.SugaredLogger

	// reauth serializes Reauthenticate calls
	reauth sync.Mutex
	// prompt orders Open and Close with the state changes behind them;
	// taken before mu
	prompt sync.Mutex

	mu       sync.Mutex
	awaiting bool
	pending  []*PendingRequest
}

func NewCoordinator(gateway Gateway, prompter Prompter, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		gateway:  gateway,
		prompter: prompter,
		log:      log,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{IsModalOpen: c.awaiting, Pending: len(c.pending)}
}

// Do blocks until the call completes, either directly or through replay
// after re-authentication.
func (c *Coordinator) Do(ctx context.Context, req *models.ProxyRequest) (*models.ProxyResponse, error) {
	c.mu.Lock()
	if c.awaiting {
		p := c.enqueueLocked(ctx, req)
		c.mu.Unlock()
		return wait(ctx, p)
	}
	c.mu.Unlock()

	resp, err := c.gateway.Do(ctx, req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || strings.HasPrefix(req.Path, authRoutePrefix) {
		return resp, err
	}

	c.prompt.Lock()
	c.mu.Lock()
	opening := !c.awaiting
	c.awaiting = true
	p := c.enqueueLocked(ctx, req)
	c.mu.Unlock()

	if opening {
		c.log.Infow("session expired, awaiting re-authentication", "trigger", req.Path)
		c.prompter.Open()
	}
	c.prompt.Unlock()

	return wait(ctx, p)
}

// Reauthenticate signs in again. On success the prompt closes and every
// parked request is replayed in enqueue order, each caller receiving its own
// replay outcome. On failure nothing changes and the prompt stays open.
func (c *Coordinator) Reauthenticate(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	c.reauth.Lock()
	defer c.reauth.Unlock()

	login, err := c.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	queue := c.drain()

	c.log.Infow("re-authenticated, replaying pending requests", "count", len(queue))

	for _, p := range queue {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			p.settle(nil, ctxErr)
			continue
		}
		resp, err := c.gateway.Do(p.ctx, p.req)
		p.settle(resp, err)
	}

	return login, nil
}

// ClearPendingRequests rejects every parked request without network calls
// and returns to Normal.
func (c *Coordinator) ClearPendingRequests() {
	for _, p := range c.drain() {
		p.settle(nil, ErrReauthCancelled)
	}
}

// drain takes the queue, returns to Normal and closes the prompt if it was open.
func (c *Coordinator) drain() []*PendingRequest {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	c.mu.Lock()
	queue := c.pending
	wasOpen := c.awaiting
	c.pending = nil
	c.awaiting = false
	c.mu.Unlock()

	if wasOpen {
		c.prompter.Close()
	}
	return queue
}

func (c *Coordinator) enqueueLocked(ctx context.Context, req *models.ProxyRequest) *PendingRequest {
	p := &PendingRequest{
		ID:  uuid.NewString(),
		req: req.Clone(),
		ctx: ctx,
		out: make(chan result, 1),
	}
	c.pending = append(c.pending, p)
	return p
}

// wait returns early when the caller gives up; the entry stays queued and is
// skipped on replay.
func wait(ctx context.Context, p *PendingRequest) (*models.ProxyResponse, error) {
	select {
	case r := <-p.out:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
