package integration

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/nhle/brainmint/internal/model"
)

const (
	defaultBitbucketURL = "https://api.bitbucket.org"
	bitbucketRepos      = "/2.0/repositories?role=member&pagelen=100"
)

// bitbucketPage is the paginated envelope of the Bitbucket Cloud API.
type bitbucketPage struct {
	Values []bitbucketRepo `json:"values"`
}

type bitbucketRepo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	UpdatedOn   string `json:"updated_on"`
	IsPrivate   bool   `json:"is_private"`
	Links       struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
}

// Bitbucket lists repositories on Bitbucket Cloud. The stored token is
// the "username:app_password" pair sent as Basic credentials.
type Bitbucket struct {
	client *restClient
}

// NewBitbucket creates a Bitbucket provider. An empty baseURL means
// api.bitbucket.org.
func NewBitbucket(hc *http.Client, baseURL string) *Bitbucket {
	if baseURL == "" {
		baseURL = defaultBitbucketURL
	}
	return &Bitbucket{
		client: newRESTClient(model.PlatformBitbucket, baseURL, hc, func(req *http.Request, token string) {
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(token)))
		}),
	}
}

// Platform returns model.PlatformBitbucket.
func (b *Bitbucket) Platform() model.Platform { return model.PlatformBitbucket }

// ListRepos returns the repositories the credentials are a member of.
// Bitbucket has no star count, so Stars is always zero.
func (b *Bitbucket) ListRepos(ctx context.Context, token string) ([]model.Repo, error) {
	var page bitbucketPage
	if err := b.client.get(ctx, bitbucketRepos, token, &page); err != nil {
		return nil, err
	}

	out := make([]model.Repo, 0, len(page.Values))
	for _, r := range page.Values {
		out = append(out, model.Repo{
			Name:        r.FullName,
			URL:         r.Links.HTML.Href,
			Description: r.Description,
			Language:    r.Language,
			UpdatedAt:   day(r.UpdatedOn),
			IsPrivate:   r.IsPrivate,
		})
	}
	return out, nil
}
