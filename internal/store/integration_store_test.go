package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/testutil"
)

func TestIntegrations_Upsert(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveIntegration(ctx, 1, model.Integration{
		Platform:    model.PlatformGitLab,
		RepoURL:     " https://gitlab.com/acme ",
		AccessToken: "glpat-1",
	}))
	require.NoError(t, s.SaveIntegration(ctx, 1, model.Integration{
		Platform:    model.PlatformGitHub,
		RepoURL:     "https://github.com/acme",
		AccessToken: "ghp-1",
	}))
	require.NoError(t, s.SaveIntegration(ctx, 1, model.Integration{
		Platform:    model.PlatformGitHub,
		RepoURL:     "https://github.com/acme/api",
		AccessToken: "ghp-2",
	}))

	list, err := s.ListIntegrations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.PlatformGitHub, list[0].Platform)
	assert.Equal(t, "https://github.com/acme/api", list[0].RepoURL)
	assert.Equal(t, model.PlatformGitLab, list[1].Platform)
	assert.Equal(t, "https://gitlab.com/acme", list[1].RepoURL)
	assert.False(t, list[0].ConnectedAt.IsZero())

	gh, err := s.GetIntegration(ctx, 1, model.PlatformGitHub)
	require.NoError(t, err)
	assert.Equal(t, "ghp-2", gh.AccessToken)

	other, err := s.ListIntegrations(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestIntegrations_Delete(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveIntegration(ctx, 1, model.Integration{Platform: model.PlatformBitbucket, AccessToken: "x"}))

	require.NoError(t, s.DeleteIntegration(ctx, 1, model.PlatformBitbucket))
	require.NoError(t, s.DeleteIntegration(ctx, 1, model.PlatformBitbucket))

	_, err := s.GetIntegration(ctx, 1, model.PlatformBitbucket)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestIntegrations_RejectUnknownPlatform(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.SaveIntegration(ctx, 1, model.Integration{Platform: "sourceforge"})
	assert.True(t, model.IsValidationError(err))
	assert.True(t, model.IsValidationError(s.DeleteIntegration(ctx, 1, "sourceforge")))
}
