package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
	"github.com/orclabs/orchestrator/internal/infrastructure/resilience"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.1
)

type Client struct {
	keyring     *Keyring
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	executor    *resilience.Executor
	maxAttempts int
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

// New builds a gateway over the given credential pool. The retry budget is
// max(2*len(keys), 5) attempts with a linearly growing backoff, rotating the
// credential on every attempt.
func New(keys []string, opts ...Option) *Client {
	keyring := NewKeyring(keys)

	attempts := 2 * keyring.Len()
	if attempts < 5 {
		attempts = 5
	}

	c := &Client{
		keyring:     keyring,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		maxAttempts: attempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		cfg := resilience.DefaultConfig()
		cfg.RetryMaxAttempts = attempts
		c.executor = resilience.NewExecutor(cfg)
	}
	return c
}

func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if c.keyring.Len() == 0 {
		return "", domain.WrapError(domain.ErrNoCredentials, "gemini generate", errors.New("credential pool is empty"))
	}

	payload := buildRequest(req.Instruction, req.Document, c.temperature)

	var out string
	err := c.executor.Execute(ctx, "gemini.generate", func(callCtx context.Context) error {
		apiKey, _ := c.keyring.Next()
		text, callErr := c.postGenerate(callCtx, apiKey, payload)
		if callErr != nil {
			return callErr
		}
		out = text
		return nil
	}, classifyGenerateError)
	if err != nil {
		return "", wrapExhausted(c.maxAttempts, err)
	}
	return out, nil
}
