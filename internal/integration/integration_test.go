package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
)

func newHost(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHub_ListRepos(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "Bearer ghp-token", r.Header.Get("Authorization"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"full_name": "acme/api",
			"html_url": "https://github.com/acme/api",
			"description": "Public API",
			"stargazers_count": 12,
			"language": "Go",
			"updated_at": "2026-02-03T10:11:12Z",
			"private": true
		}]`)
	})

	repos, err := NewGitHub(srv.Client(), srv.URL).ListRepos(context.Background(), "ghp-token")
	require.NoError(t, err)
	assert.Equal(t, []model.Repo{{
		Name:        "acme/api",
		URL:         "https://github.com/acme/api",
		Description: "Public API",
		Stars:       12,
		Language:    "Go",
		UpdatedAt:   "2026-02-03",
		IsPrivate:   true,
	}}, repos)
}

func TestGitHub_Unauthorized(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	})

	_, err := NewGitHub(srv.Client(), srv.URL).ListRepos(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestGitLab_ListRepos(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("membership"))
		assert.Equal(t, "glpat-1", r.Header.Get("PRIVATE-TOKEN"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[
			{"path_with_namespace": "acme/web", "web_url": "https://gitlab.com/acme/web",
			 "description": null, "star_count": 3, "last_activity_at": "2026-01-30T08:00:00.000Z",
			 "visibility": "internal"},
			{"path_with_namespace": "acme/docs", "web_url": "https://gitlab.com/acme/docs",
			 "description": "Docs", "star_count": 0, "last_activity_at": "2026-01-02T08:00:00.000Z",
			 "visibility": "public"}
		]`)
	})

	repos, err := NewGitLab(srv.Client(), srv.URL).ListRepos(context.Background(), "glpat-1")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, model.Repo{
		Name:      "acme/web",
		URL:       "https://gitlab.com/acme/web",
		Stars:     3,
		UpdatedAt: "2026-01-30",
		IsPrivate: true,
	}, repos[0])
	assert.False(t, repos[1].IsPrivate)
	assert.Equal(t, "Docs", repos[1].Description)
}

func TestBitbucket_ListRepos(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2.0/repositories", r.URL.Path)
		assert.Equal(t, "member", r.URL.Query().Get("role"))
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("me:app-pass"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"values": [{
			"full_name": "team/service",
			"description": "",
			"language": "python",
			"updated_on": "2025-12-24T17:00:00.123456+00:00",
			"is_private": true,
			"links": {"html": {"href": "https://bitbucket.org/team/service"}}
		}]}`)
	})

	repos, err := NewBitbucket(srv.Client(), srv.URL).ListRepos(context.Background(), "me:app-pass")
	require.NoError(t, err)
	assert.Equal(t, []model.Repo{{
		Name:      "team/service",
		URL:       "https://bitbucket.org/team/service",
		Language:  "python",
		UpdatedAt: "2025-12-24",
		IsPrivate: true,
	}}, repos)
}

func TestRESTClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		auth    bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, auth: true},
		{name: "gitlab message", status: http.StatusForbidden, body: `{"message": "403 Forbidden"}`, wantErr: "403 Forbidden"},
		{name: "bitbucket message", status: http.StatusNotFound, body: `{"error": {"message": "no workspace"}}`, wantErr: "no workspace"},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream down", wantErr: "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := NewGitLab(srv.Client(), srv.URL).ListRepos(context.Background(), "tok")
			require.Error(t, err)
			if tt.auth {
				assert.True(t, IsAuthError(err))
				return
			}
			assert.False(t, IsAuthError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRESTClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"values": []}`)
	})

	repos, err := NewBitbucket(srv.Client(), srv.URL).ListRepos(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Equal(t, int32(2), calls.Load())
}

type stubProvider struct {
	platform model.Platform
	repos    []model.Repo
	err      error
	token    string
}

func (s *stubProvider) Platform() model.Platform { return s.platform }

func (s *stubProvider) ListRepos(_ context.Context, token string) ([]model.Repo, error) {
	s.token = token
	return s.repos, s.err
}

func TestRegistry_ListRepos(t *testing.T) {
	stub := &stubProvider{platform: model.PlatformGitLab, repos: []model.Repo{{Name: "acme/web"}}}
	reg := NewRegistry(WithProvider(stub))

	repos, err := reg.ListRepos(context.Background(), model.Integration{
		Platform:    model.PlatformGitLab,
		AccessToken: "glpat-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Repo{{Name: "acme/web"}}, repos)
	assert.Equal(t, "glpat-1", stub.token)
}

func TestRegistry_EmptyResultIsNotNil(t *testing.T) {
	reg := NewRegistry(WithProvider(&stubProvider{platform: model.PlatformGitHub}))

	repos, err := reg.ListRepos(context.Background(), model.Integration{Platform: model.PlatformGitHub, AccessToken: "x"})
	require.NoError(t, err)
	assert.NotNil(t, repos)
}

func TestRegistry_Rejections(t *testing.T) {
	reg := NewRegistry(WithProvider(&stubProvider{platform: model.PlatformGitHub}))
	ctx := context.Background()

	_, err := reg.ListRepos(ctx, model.Integration{Platform: "sourceforge", AccessToken: "x"})
	assert.True(t, model.IsValidationError(err))

	_, err = reg.ListRepos(ctx, model.Integration{Platform: model.PlatformGitHub})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistry_WrapsProviderErrors(t *testing.T) {
	authErr := &AuthError{Platform: model.PlatformBitbucket, Message: "expired"}
	reg := NewRegistry(WithProvider(&stubProvider{platform: model.PlatformBitbucket, err: authErr}))

	_, err := reg.ListRepos(context.Background(), model.Integration{Platform: model.PlatformBitbucket, AccessToken: "x"})
	assert.True(t, IsAuthError(err))
}

func TestRegistry_WithBaseURL(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"path_with_namespace": "self/hosted", "visibility": "public"}]`)
	})
	reg := NewRegistry(WithHTTPClient(srv.Client()), WithBaseURL(model.PlatformGitLab, srv.URL))

	repos, err := reg.ListRepos(context.Background(), model.Integration{Platform: model.PlatformGitLab, AccessToken: "x"})
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "self/hosted", repos[0].Name)
}
