package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

const (
	upsertIntegrationSQLite = `
		INSERT INTO integrations (user_id, platform, repo_url, access_token, connected_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, platform) DO UPDATE SET
			repo_url = excluded.repo_url,
			access_token = excluded.access_token,
			connected_at = excluded.connected_at`

	upsertIntegrationMySQL = `
		INSERT INTO integrations (user_id, platform, repo_url, access_token, connected_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			repo_url = VALUES(repo_url),
			access_token = VALUES(access_token),
			connected_at = VALUES(connected_at)`
)

func invalidPlatform(p model.Platform) error {
	return &model.ValidationError{
		Field:   "platform",
		Message: fmt.Sprintf("unsupported platform %q", p),
	}
}

// ListIntegrations returns the user's connected platforms ordered by
// platform name.
func (s *SQLStore) ListIntegrations(ctx context.Context, userID int64) ([]model.Integration, error) {
	var out []model.Integration
	err := s.db.SelectContext(ctx, &out, `
		SELECT platform, repo_url, access_token, connected_at
		FROM integrations
		WHERE user_id = ?
		ORDER BY platform`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying integrations: %w", err)
	}
	return out, nil
}

// GetIntegration returns one connected platform, or model.ErrNotFound.
func (s *SQLStore) GetIntegration(ctx context.Context, userID int64, platform model.Platform) (model.Integration, error) {
	var in model.Integration
	err := s.db.GetContext(ctx, &in, `
		SELECT platform, repo_url, access_token, connected_at
		FROM integrations
		WHERE user_id = ? AND platform = ?`,
		userID, string(platform),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Integration{}, fmt.Errorf("%s integration: %w", platform, model.ErrNotFound)
	}
	if err != nil {
		return model.Integration{}, fmt.Errorf("getting %s integration: %w", platform, err)
	}
	return in, nil
}

// SaveIntegration connects a platform, replacing any previous
// connection to it.
func (s *SQLStore) SaveIntegration(ctx context.Context, userID int64, in model.Integration) error {
	if !in.Platform.Valid() {
		return invalidPlatform(in.Platform)
	}

	query := upsertIntegrationSQLite
	if s.driver == DriverMySQL {
		query = upsertIntegrationMySQL
	}
	_, err := s.db.ExecContext(ctx, query,
		userID, string(in.Platform), strings.TrimSpace(in.RepoURL), in.AccessToken, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving %s integration: %w", in.Platform, err)
	}
	return nil
}

// DeleteIntegration disconnects a platform. Disconnecting a platform
// that is not connected is not an error.
func (s *SQLStore) DeleteIntegration(ctx context.Context, userID int64, platform model.Platform) error {
	if !platform.Valid() {
		return invalidPlatform(platform)
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM integrations WHERE user_id = ? AND platform = ?", userID, string(platform),
	)
	if err != nil {
		return fmt.Errorf("deleting %s integration: %w", platform, err)
	}
	return nil
}
