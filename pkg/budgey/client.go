package budgey

import (
	"context"
	"net/http"
	"time"

	"github.com/ayzanadeem/Budgey/internal/transport"
	internalTypes "github.com/ayzanadeem/Budgey/internal/types"
	"github.com/getsentry/sentry-go"
)

const (
	// DefaultBaseURL is the default Budgey backend base URL
	DefaultBaseURL = "https://api.budgey.app"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "budgey-go/1.0.0"

	// DefaultPageSize is the page size used when callers pass 0
	DefaultPageSize = 20

	// MaxPageSize caps a single fetch
	MaxPageSize = 100

	// DefaultCurrency is applied to records created without one
	DefaultCurrency = "USD"
)

// Client is the main Budgey backend client
type Client struct {
	// Service interfaces
	Expenses   ExpenseService
	Categories CategoryService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions
	session    *internalTypes.Session
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default backend base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Token provides direct authentication token
	Token string

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures retry behavior
	RetryConfig *internalTypes.RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *internalTypes.Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Transport handles communication with the backend document store
type Transport interface {
	Execute(ctx context.Context, path string, params map[string]interface{}, result interface{}) error
	SetAuth(token string)
	SetSession(session *internalTypes.Session)
}

// NewClient creates a new Budgey client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	// Create transport using the internal package
	transportOpts := &transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	}
	trans := transport.NewStoreTransport(transportOpts)

	// Set auth if token provided
	if opts.Token != "" {
		trans.SetAuth(opts.Token)
	}

	// Create client
	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  trans,
		options:    opts,
	}

	// Initialize services
	c.initServices()

	return c, nil
}

// NewClientWithToken creates a client with an auth token
func NewClientWithToken(token string) (*Client, error) {
	return NewClient(&ClientOptions{
		Token: token,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Expenses = &expenseService{client: c}
	c.Categories = newCategoryService(c)
}

// NewBreakdownPaginator creates a breakdown paginator for one user session,
// driven by the client's expense service. Pass pageSize 0 for the default.
func (c *Client) NewBreakdownPaginator(userID string, pageSize int) (*BreakdownPaginator, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	var logger internalTypes.Logger
	if c.options.Logger != nil {
		logger = c.options.Logger
	}
	return NewBreakdownPaginator(c.Expenses, userID, pageSize, logger)
}

// SetToken sets the authentication token
func (c *Client) SetToken(token string) {
	c.transport.SetAuth(token)
	if c.session == nil {
		c.session = &internalTypes.Session{}
	}
	c.session.Token = token
}

// execute performs a document store operation with rate limiting and error
// tracking applied
func (c *Client) execute(ctx context.Context, path string, params map[string]interface{}, result interface{}) error {
	// Rate limiting
	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
			return err
		}
	}

	// Execute operation
	start := time.Now()
	err := c.transport.Execute(ctx, path, params, result)
	duration := time.Since(start)

	// Capture errors in Sentry
	if err != nil {
		capture := func(scope *sentry.Scope) {
			scope.SetTag("store.operation", path)
			scope.SetContext("store", map[string]interface{}{
				"params":   params,
				"duration": duration.String(),
			})
		}
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				capture(scope)
				hub.CaptureException(err)
			})
		} else {
			sentry.WithScope(func(scope *sentry.Scope) {
				capture(scope)
				sentry.CaptureException(err)
			})
		}
	}

	return err
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)
}
