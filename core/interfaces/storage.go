// ABOUTME: Storage interface for persisting daily posts
// ABOUTME: Upsert-by-unique-key table contract: select by slug, insert, update

package interfaces

import "context"

// Post is a persisted daily article record.
type Post struct {
	ID          string   `json:"id,omitempty"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// PostStore is the storage backend contract. Implementations exist for
// Supabase (REST) and local SQLite.
type PostStore interface {
	// GetBySlug looks up a post by its unique slug.
	// A miss returns (nil, nil); "not found" is not an error.
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// Insert creates a new post and returns the stored record including
	// the generated ID.
	Insert(ctx context.Context, post *Post) (*Post, error)

	// Update replaces the post identified by post.Slug and returns the
	// stored record.
	Update(ctx context.Context, post *Post) (*Post, error)

	// Recent returns up to limit posts ordered by date descending.
	Recent(ctx context.Context, limit int) ([]Post, error)

	// Delete removes the post identified by slug.
	Delete(ctx context.Context, slug string) error
}
