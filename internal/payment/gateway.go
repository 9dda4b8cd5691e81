package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest   = errors.New("invalid payment request")
	ErrInvalidSignature = errors.New("invalid payment notification")
	ErrAmountMismatch   = errors.New("payment amount does not match order")
	ErrUnknownOutcome   = errors.New("unknown payment outcome")
	ErrMissingAmount    = errors.New("payment notification has no amount")
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Request hands an order to the gateway. Amount is in minor units.
// OnSuccess and OnFailure run when the gateway reports back for OrderReference.
type Request struct {
	Amount         int64
	Currency       string
	OrderReference string
	CustomerEmail  string
	OnSuccess      func(ctx context.Context, paymentRef string) error
	OnFailure      func(ctx context.Context, reason string) error
}

type Checkout struct {
	URL       string    `json:"checkout_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Gateway interface {
	Initiate(ctx context.Context, req Request) (*Checkout, error)
}

// Resolver settles notifications whose Request is no longer held in memory,
// for example after a restart.
type Resolver interface {
	ResolvePayment(ctx context.Context, n Notification) error
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, n Notification) error

func (f ResolverFunc) ResolvePayment(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Notification is the verified content of a gateway webhook. Amount is in minor
// units and is required when Outcome is succeeded.
type Notification struct {
	OrderReference string  `json:"order_ref"`
	Outcome        Outcome `json:"outcome"`
	PaymentRef     string  `json:"payment_ref,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Amount         int64   `json:"amount,omitempty"`
	jwt.RegisteredClaims
}

type Config struct {
	CheckoutURL   string
	WebhookSecret string
	RequestTTL    time.Duration
	MaxPending    int
}

// HostedGateway redirects the customer to a hosted checkout page and learns the
// outcome from an HS256-signed webhook.
type HostedGateway struct {
	cfg      Config
	secret   []byte
	pending  *expirable.LRU[string, Request]
	resolver Resolver
	logger   *zap.Logger
}

func NewHostedGateway(cfg Config, resolver Resolver, logger *zap.Logger) *HostedGateway {
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = 30 * time.Minute
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 10000
	}
	return &HostedGateway{
		cfg:      cfg,
		secret:   []byte(cfg.WebhookSecret),
		pending:  expirable.NewLRU[string, Request](cfg.MaxPending, nil, cfg.RequestTTL),
		resolver: resolver,
		logger:   logger.Named("payment"),
	}
}

func (g *HostedGateway) Initiate(ctx context.Context, req Request) (*Checkout, error) {
	if req.Amount <= 0 || req.OrderReference == "" || req.Currency == "" {
		return nil, fmt.Errorf("%w: amount=%d reference=%q currency=%q", ErrInvalidRequest, req.Amount, req.OrderReference, req.Currency)
	}

	u, err := url.Parse(g.cfg.CheckoutURL)
	if err != nil {
		return nil, fmt.Errorf("checkout url: %w", err)
	}
	q := u.Query()
	q.Set("ref", req.OrderReference)
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	q.Set("currency", req.Currency)
	if req.CustomerEmail != "" {
		q.Set("email", req.CustomerEmail)
	}
	u.RawQuery = q.Encode()

	g.pending.Add(req.OrderReference, req)
	g.logger.Info("payment initiated", zap.String("order_ref", req.OrderReference), zap.Int64("amount", req.Amount), zap.String("currency", req.Currency))

	return &Checkout{URL: u.String(), ExpiresAt: time.Now().Add(g.cfg.RequestTTL)}, nil
}

// Verify checks the webhook token signature and returns its claims.
func (g *HostedGateway) Verify(token string) (*Notification, error) {
	parsed, err := jwt.ParseWithClaims(token, &Notification{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	n, ok := parsed.Claims.(*Notification)
	if !ok || !parsed.Valid || n.OrderReference == "" {
		return nil, ErrInvalidSignature
	}
	if n.Outcome != OutcomeSucceeded && n.Outcome != OutcomeFailed {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutcome, n.Outcome)
	}
	if n.Outcome == OutcomeSucceeded && n.Amount <= 0 {
		return nil, fmt.Errorf("%w: order %s", ErrMissingAmount, n.OrderReference)
	}
	return n, nil
}

// HandleWebhook verifies token and runs the matching callback.
func (g *HostedGateway) HandleWebhook(ctx context.Context, token string) error {
	n, err := g.Verify(token)
	if err != nil {
		g.logger.Warn("rejected payment notification", zap.Error(err))
		return err
	}

	req, ok := g.pending.Get(n.OrderReference)
	if !ok {
		g.logger.Info("no pending request, resolving from store", zap.String("order_ref", n.OrderReference))
		return g.resolver.ResolvePayment(ctx, *n)
	}
	if n.Outcome == OutcomeSucceeded && n.Amount != req.Amount {
		g.logger.Error("payment amount mismatch", zap.String("order_ref", n.OrderReference), zap.Int64("expected", req.Amount), zap.Int64("got", n.Amount))
		return ErrAmountMismatch
	}

	if n.Outcome == OutcomeSucceeded {
		err = req.OnSuccess(ctx, n.PaymentRef)
	} else {
		err = req.OnFailure(ctx, n.Reason)
	}
	if err != nil {
		return err
	}
	g.pending.Remove(n.OrderReference)
	return nil
}

// SignNotification builds a webhook token. The gateway simulator and tests use it.
func SignNotification(secret string, n Notification) (string, error) {
	if n.IssuedAt == nil {
		n.IssuedAt = jwt.NewNumericDate(time.Now())
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, n).SignedString([]byte(secret))
}
