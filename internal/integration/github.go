package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/nhle/brainmint/internal/model"
)

// githubPageSize matches the single page of most recently updated
// repositories the dashboard shows.
const githubPageSize = 100

// GitHub lists repositories through the GitHub REST API.
type GitHub struct {
	httpClient *http.Client
	baseURL    string
}

// NewGitHub creates a GitHub provider. An empty baseURL means
// api.github.com.
func NewGitHub(hc *http.Client, baseURL string) *GitHub {
	return &GitHub{httpClient: hc, baseURL: baseURL}
}

// Platform returns model.PlatformGitHub.
func (g *GitHub) Platform() model.Platform { return model.PlatformGitHub }

func (g *GitHub) client(ctx context.Context, token string) (*github.Client, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	client.UserAgent = userAgent

	if g.baseURL != "" {
		base, err := url.Parse(strings.TrimRight(g.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = base
	}
	return client, nil
}

// ListRepos returns the authenticated user's repositories, most
// recently updated first.
func (g *GitHub) ListRepos(ctx context.Context, token string) ([]model.Repo, error) {
	client, err := g.client(ctx, token)
	if err != nil {
		return nil, err
	}

	repos, _, err := client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: githubPageSize},
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil &&
			ghErr.Response.StatusCode == http.StatusUnauthorized {
			return nil, &AuthError{Platform: model.PlatformGitHub, Message: ghErr.Message}
		}
		return nil, fmt.Errorf("listing github repositories: %w", err)
	}

	out := make([]model.Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, model.Repo{
			Name:        r.GetFullName(),
			URL:         r.GetHTMLURL(),
			Description: r.GetDescription(),
			Stars:       r.GetStargazersCount(),
			Language:    r.GetLanguage(),
			UpdatedAt:   r.GetUpdatedAt().Format(model.DateLayout),
			IsPrivate:   r.GetPrivate(),
		})
	}
	return out, nil
}
