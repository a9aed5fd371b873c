package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atlasforge/blueprint/pkg/types"
)

// CreatePost inserts a post, assigning hintID when it is free. The GUID
// is always regenerated; any GUID on the value is discarded.
func (s *Store) CreatePost(post *types.Post, hintID int64) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if post == nil || post.Title == "" && post.Content == "" {
		return 0, types.ErrInvalidData
	}

	guid := newGUID()
	id, err := insertWithHint(db, "posts", "post_id", hintID, func(id any) (sql.Result, error) {
		return db.Exec(
			`INSERT INTO posts (post_id, post_type, title, content, excerpt, status, slug, date, parent, guid)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, post.Type, post.Title, post.Content, post.Excerpt, post.Status,
			post.Slug, post.Date, post.Parent, guid,
		)
	})
	if err != nil {
		return 0, fmt.Errorf("creating post: %w", err)
	}
	return id, nil
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(id int64) (*types.Post, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := db.QueryRow(
		`SELECT post_id, post_type, title, content, excerpt, status, slug, date, parent, guid
		 FROM posts WHERE post_id = ?`, id,
	)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return post, nil
}

// DeletePost removes a post with its metadata and term assignments.
func (s *Store) DeletePost(id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM posts WHERE post_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if _, err := db.Exec("DELETE FROM postmeta WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("deleting post %d meta: %w", id, err)
	}
	if _, err := db.Exec("DELETE FROM term_relationships WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("deleting post %d terms: %w", id, err)
	}
	return nil
}

// ListPosts returns posts matching the filter, ordered by ID.
func (s *Store) ListPosts(filter types.PostFilter) ([]*types.Post, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT post_id, post_type, title, content, excerpt, status, slug, date, parent, guid FROM posts`
	var clauses []string
	var args []any
	if len(filter.Types) > 0 {
		clauses = append(clauses, "post_type IN ("+placeholders(len(filter.Types))+")")
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, st := range filter.Statuses {
			args = append(args, st)
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY post_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []*types.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*types.Post, error) {
	var p types.Post
	err := row.Scan(&p.ID, &p.Type, &p.Title, &p.Content, &p.Excerpt,
		&p.Status, &p.Slug, &p.Date, &p.Parent, &p.GUID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// newGUID generates a host GUID for a new entity.
func newGUID() string {
	return "urn:uuid:" + uuid.NewString()
}
