package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmailSubscribed indicates the address is already on the newsletter list.
	ErrEmailSubscribed = errors.New("email already subscribed")
	// ErrPostNotFound signals a missing or unpublished blog post.
	ErrPostNotFound = errors.New("blog post not found")
)

// BlogPost is a published article on the directory site.
type BlogPost struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	Category        string     `json:"category"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
	ReadTimeMinutes int        `json:"readTimeMinutes"`
	IsPublished     bool       `json:"isPublished"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// SubscribeNewsletter adds an email address to the newsletter list.
func (s *Store) SubscribeNewsletter(ctx context.Context, email, postcode string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var pc *string
	if postcode = strings.TrimSpace(postcode); postcode != "" {
		pc = &postcode
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO newsletters (email, postcode)
		VALUES ($1, $2)
	`, email, pc); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailSubscribed
		}
		return fmt.Errorf("insert newsletter subscription: %w", err)
	}
	return nil
}

const blogPostColumns = `
	id, title, slug, excerpt, content, category, image_url, read_time_minutes,
	is_published, published_at, created_at`

// PublishedPosts lists published blog posts, most recent first.
func (s *Store) PublishedPosts(ctx context.Context, limit int) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+blogPostColumns+`
		FROM blog_posts
		WHERE is_published = TRUE
		ORDER BY published_at DESC NULLS LAST, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select blog posts: %w", err)
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blog posts: %w", err)
	}
	return posts, nil
}

// PostBySlug returns a single published blog post.
func (s *Store) PostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+blogPostColumns+`
		FROM blog_posts
		WHERE slug = $1 AND is_published = TRUE`, slug)

	p, err := scanBlogPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BlogPost{}, ErrPostNotFound
		}
		return BlogPost{}, fmt.Errorf("select blog post: %w", err)
	}
	return p, nil
}

func scanBlogPost(row rowScanner) (BlogPost, error) {
	var p BlogPost
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category,
		&p.ImageURL, &p.ReadTimeMinutes, &p.IsPublished, &p.PublishedAt, &p.CreatedAt,
	)
	return p, err
}
