// ABOUTME: Local SQLite post store for running without a hosted backend
// ABOUTME: Same upsert-by-slug contract as the Supabase store, tags stored as JSON

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"blockchain-daily/core/errors"
	"blockchain-daily/core/interfaces"
)

// Store implements the PostStore interface on a local SQLite file.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the posts database at filePath.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		return nil, &errors.ValidationError{Field: "STORE_SQLITE_PATH", Message: "path cannot be empty"}
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open posts database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to posts database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize posts schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			content TEXT NOT NULL,
			description TEXT,
			tags TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date);
	`
	_, err := s.db.Exec(query)
	return err
}

// GetBySlug returns the post with the given slug, or (nil, nil) on miss.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, slug, title, date, content, description, tags FROM posts WHERE slug = ?", slug)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, "failed to query post")
	}
	return post, nil
}

// Insert creates a new post, generating an ID.
func (s *Store) Insert(ctx context.Context, post *interfaces.Post) (*interfaces.Post, error) {
	stored := *post
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	tags, err := json.Marshal(stored.Tags)
	if err != nil {
		return nil, errors.WrapError(err, "failed to encode tags")
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO posts (id, slug, title, date, content, description, tags) VALUES (?, ?, ?, ?, ?, ?, ?)",
		stored.ID, stored.Slug, stored.Title, stored.Date, stored.Content, stored.Description, string(tags))
	if err != nil {
		return nil, errors.WrapError(err, "failed to insert post")
	}

	return &stored, nil
}

// Update replaces the post identified by post.Slug.
func (s *Store) Update(ctx context.Context, post *interfaces.Post) (*interfaces.Post, error) {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return nil, errors.WrapError(err, "failed to encode tags")
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, date = ?, content = ?, description = ?, tags = ? WHERE slug = ?",
		post.Title, post.Date, post.Content, post.Description, string(tags), post.Slug)
	if err != nil {
		return nil, errors.WrapError(err, "failed to update post")
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, &errors.NotFoundError{Resource: "post", ID: post.Slug}
	}

	return s.GetBySlug(ctx, post.Slug)
}

// Recent returns up to limit posts ordered by date descending.
func (s *Store) Recent(ctx context.Context, limit int) ([]interfaces.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, slug, title, date, content, description, tags FROM posts ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.WrapError(err, "failed to query posts")
	}
	defer rows.Close()

	var posts []interfaces.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, errors.WrapError(err, "failed to scan post")
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// Delete removes the post with the given slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE slug = ?", slug)
	if err != nil {
		return errors.WrapError(err, "failed to delete post")
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*interfaces.Post, error) {
	var post interfaces.Post
	var tags sql.NullString

	err := row.Scan(&post.ID, &post.Slug, &post.Title, &post.Date, &post.Content, &post.Description, &tags)
	if err != nil {
		return nil, err
	}

	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &post.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags column for %s: %w", post.Slug, err)
		}
	}
	return &post, nil
}
