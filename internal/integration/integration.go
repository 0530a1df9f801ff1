// Package integration lists repositories on the code hosts a user has
// connected.
package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// AuthError indicates that a host rejected the stored access token.
type AuthError struct {
	Platform model.Platform
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Platform, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Provider lists the repositories a token can see on one host.
type Provider interface {
	Platform() model.Platform
	ListRepos(ctx context.Context, token string) ([]model.Repo, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient sets the HTTP client the default providers use.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Registry) { r.httpClient = hc }
}

// WithBaseURL points the default provider for platform at another API
// root, such as a self-hosted instance.
func WithBaseURL(platform model.Platform, baseURL string) Option {
	return func(r *Registry) { r.baseURLs[platform] = baseURL }
}

// WithProvider replaces the provider for p.Platform().
func WithProvider(p Provider) Option {
	return func(r *Registry) { r.providers[p.Platform()] = p }
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry routes repository listings to the provider of each platform.
type Registry struct {
	providers  map[model.Platform]Provider
	baseURLs   map[model.Platform]string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRegistry builds a registry with GitHub, GitLab and Bitbucket
// providers unless an option replaces them.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		providers:  make(map[model.Platform]Provider),
		baseURLs:   make(map[model.Platform]string),
		httpClient: &http.Client{Timeout: 8 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	defaults := []Provider{
		NewGitHub(r.httpClient, r.baseURLs[model.PlatformGitHub]),
		NewGitLab(r.httpClient, r.baseURLs[model.PlatformGitLab]),
		NewBitbucket(r.httpClient, r.baseURLs[model.PlatformBitbucket]),
	}
	for _, p := range defaults {
		if _, ok := r.providers[p.Platform()]; !ok {
			r.providers[p.Platform()] = p
		}
	}
	return r
}

// ListRepos lists the repositories visible through a connected
// integration. An integration without a token is reported as
// model.ErrNotFound.
func (r *Registry) ListRepos(ctx context.Context, in model.Integration) ([]model.Repo, error) {
	p, ok := r.providers[in.Platform]
	if !ok {
		return nil, &model.ValidationError{
			Field:   "platform",
			Message: fmt.Sprintf("unsupported platform %q", in.Platform),
		}
	}
	if in.AccessToken == "" {
		return nil, fmt.Errorf("%s integration has no token: %w", in.Platform, model.ErrNotFound)
	}

	start := time.Now()
	repos, err := p.ListRepos(ctx, in.AccessToken)
	if err != nil {
		r.logger.Warn("listing repositories failed",
			slog.String("platform", string(in.Platform)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing %s repositories: %w", in.Platform, err)
	}
	r.logger.Debug("listed repositories",
		slog.String("platform", string(in.Platform)),
		slog.Int("count", len(repos)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if repos == nil {
		repos = []model.Repo{}
	}
	return repos, nil
}

// day keeps the YYYY-MM-DD prefix of a timestamp.
func day(ts string) string {
	if len(ts) > len(model.DateLayout) {
		return ts[:len(model.DateLayout)]
	}
	return ts
}
