package model

import "time"

// Platform identifies a code-hosting integration.
type Platform string

const (
	PlatformGitHub    Platform = "github"
	PlatformGitLab    Platform = "gitlab"
	PlatformBitbucket Platform = "bitbucket"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformGitHub, PlatformGitLab, PlatformBitbucket:
		return true
	}
	return false
}

// Integration is a connected repository host for one user.
type Integration struct {
	Platform    Platform  `json:"platform" db:"platform"`
	RepoURL     string    `json:"repo_url" db:"repo_url"`
	AccessToken string    `json:"-" db:"access_token"`
	ConnectedAt time.Time `json:"connected_at" db:"connected_at"`
}

// Repo is a repository listed through an integration.
type Repo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
	UpdatedAt   string `json:"updated_at"`
	IsPrivate   bool   `json:"is_private"`
}
