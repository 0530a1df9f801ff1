package integration

import (
	"context"
	"net/http"

	"github.com/nhle/brainmint/internal/model"
)

const (
	defaultGitLabURL = "https://gitlab.com"
	gitlabProjects   = "/api/v4/projects?membership=true&per_page=100&order_by=updated_at"
)

// gitlabProject is a row of GET /api/v4/projects.
type gitlabProject struct {
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
	Description       string `json:"description"`
	StarCount         int    `json:"star_count"`
	LastActivityAt    string `json:"last_activity_at"`
	Visibility        string `json:"visibility"`
}

// GitLab lists the projects a personal access token is a member of.
type GitLab struct {
	client *restClient
}

// NewGitLab creates a GitLab provider. An empty baseURL means gitlab.com.
func NewGitLab(hc *http.Client, baseURL string) *GitLab {
	if baseURL == "" {
		baseURL = defaultGitLabURL
	}
	return &GitLab{
		client: newRESTClient(model.PlatformGitLab, baseURL, hc, func(req *http.Request, token string) {
			req.Header.Set("PRIVATE-TOKEN", token)
		}),
	}
}

// Platform returns model.PlatformGitLab.
func (g *GitLab) Platform() model.Platform { return model.PlatformGitLab }

// ListRepos returns member projects, most recently active first.
func (g *GitLab) ListRepos(ctx context.Context, token string) ([]model.Repo, error) {
	var projects []gitlabProject
	if err := g.client.get(ctx, gitlabProjects, token, &projects); err != nil {
		return nil, err
	}

	out := make([]model.Repo, 0, len(projects))
	for _, p := range projects {
		out = append(out, model.Repo{
			Name:        p.PathWithNamespace,
			URL:         p.WebURL,
			Description: p.Description,
			Stars:       p.StarCount,
			UpdatedAt:   day(p.LastActivityAt),
			IsPrivate:   p.Visibility != "public",
		})
	}
	return out, nil
}
