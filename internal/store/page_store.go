package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// DefaultPageTitle names pages created without a title.
const DefaultPageTitle = "Untitled"

// ListPages returns the user's pages, most recently edited first.
func (s *SQLStore) ListPages(ctx context.Context, userID int64) ([]model.Page, error) {
	pages := []model.Page{}
	err := s.db.SelectContext(ctx, &pages, `
		SELECT id, user_id, title, body, created_at, updated_at
		FROM pages
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	return pages, nil
}

// CreatePage inserts a page and returns it with its new ID.
func (s *SQLStore) CreatePage(ctx context.Context, page model.Page) (model.Page, error) {
	if page.UserID <= 0 {
		return model.Page{}, &model.ValidationError{Field: "user_id", Message: "a user is required"}
	}
	page.Title = strings.TrimSpace(page.Title)
	if page.Title == "" {
		page.Title = DefaultPageTitle
	}
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO pages (user_id, title, body, created_at, updated_at)
		VALUES (:user_id, :title, :body, :created_at, :updated_at)`,
		page,
	)
	if err != nil {
		return model.Page{}, fmt.Errorf("creating page: %w", err)
	}
	page.ID, err = result.LastInsertId()
	if err != nil {
		return model.Page{}, fmt.Errorf("reading new page id: %w", err)
	}
	return page, nil
}

// UpdatePage replaces a page's title and body.
func (s *SQLStore) UpdatePage(ctx context.Context, page model.Page) error {
	page.Title = strings.TrimSpace(page.Title)
	if page.Title == "" {
		page.Title = DefaultPageTitle
	}
	page.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE pages SET title = :title, body = :body, updated_at = :updated_at
		WHERE id = :id`,
		page,
	)
	if err != nil {
		return fmt.Errorf("updating page %d: %w", page.ID, err)
	}
	return requireAffected(result, "page", page.ID)
}

// DeletePage removes a page by ID.
func (s *SQLStore) DeletePage(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	return requireAffected(result, "page", id)
}
