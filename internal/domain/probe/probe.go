package probe

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/resilience"
)

// DefaultTimeout bounds every probe
const DefaultTimeout = 100 * time.Millisecond

// Result is the outcome of one probe
type Result string

const (
	ResultEmbed    Result = "embed"
	ResultTopLevel Result = "top_level"
	ResultError    Result = "error"
)

// HTTPProber probes launch paths relative to the shell origin
type HTTPProber struct {
	origin   *url.URL
	client   *resty.Client
	timeout  time.Duration
	breakers *resilience.Group
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHTTPProber creates a prober for apps served under origin
func NewHTTPProber(origin *url.URL, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		SetHeader("User-Agent", "AgentOS-Shell-Probe/1.0")

	return &HTTPProber{
		origin:   origin,
		client:   client,
		timeout:  timeout,
		breakers: resilience.NewGroup(resilience.Settings{Failures: 5, Cooldown: 30 * time.Second}),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger
func (p *HTTPProber) WithLogger(logger *zap.Logger) *HTTPProber {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithMetrics adds metrics tracking to the prober
func (p *HTTPProber) WithMetrics(metrics *monitoring.Metrics) *HTTPProber {
	p.metrics = metrics
	return p
}

// NeedsTopLevel reports whether the app at path must escape the shell.
// It never returns an error: failures mean "embed".
func (p *HTTPProber) NeedsTopLevel(ctx context.Context, path string) bool {
	result := p.Probe(ctx, path)
	return result == ResultTopLevel
}

// Probe runs one probe and classifies the outcome
func (p *HTTPProber) Probe(ctx context.Context, path string) Result {
	ref, err := url.Parse(path)
	if err != nil {
		p.logger.Debug("Unparseable launch path, embedding", zap.String("path", path), zap.Error(err))
		p.record(ResultError, 0)
		return ResultError
	}
	target := p.origin.ResolveReference(ref)

	breaker := p.breakers.Get(target.Host)
	if err := breaker.Allow(); err != nil {
		p.record(ResultError, 0)
		return ResultError
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Head(target.String())
	elapsed := time.Since(start)

	if err != nil {
		breaker.Done(false)
		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Debug("Probe timed out, embedding", zap.String("url", target.String()), zap.Duration("elapsed", elapsed))
		} else {
			p.logger.Debug("Probe failed, embedding", zap.String("url", target.String()), zap.Error(err))
		}
		p.record(ResultError, elapsed)
		return ResultError
	}
	breaker.Done(true)

	status := resp.StatusCode()
	if status >= 300 && status < 400 {
		p.logger.Info("App enforces its own origin",
			zap.String("url", target.String()),
			zap.Int("status", status),
			zap.String("location", resp.Header().Get("Location")),
		)
		p.record(ResultTopLevel, elapsed)
		return ResultTopLevel
	}

	p.record(ResultEmbed, elapsed)
	return ResultEmbed
}

func (p *HTTPProber) record(result Result, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordProbe(string(result), elapsed)
	}
}

// Never is a prober that always embeds. Used when probing is disabled.
type Never struct{}

// NeedsTopLevel implements the prober contract
func (Never) NeedsTopLevel(context.Context, string) bool { return false }
