package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/atlasforge/blueprint/pkg/types"
)

// CreateTerm inserts a term, assigning hintID when it is free.
func (s *Store) CreateTerm(term *types.Term, hintID int64) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if term == nil || term.Name == "" || term.Taxonomy == "" {
		return 0, types.ErrInvalidData
	}

	id, err := insertWithHint(db, "terms", "term_id", hintID, func(id any) (sql.Result, error) {
		return db.Exec(
			`INSERT INTO terms (term_id, name, taxonomy, slug, description, parent)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, term.Name, term.Taxonomy, term.Slug, term.Description, term.Parent,
		)
	})
	if err != nil {
		return 0, fmt.Errorf("creating term: %w", err)
	}
	return id, nil
}

// FindTerm looks up a term by name, taxonomy, and parent.
func (s *Store) FindTerm(name, taxonomy string, parent int64) (*types.Term, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT term_id, name, taxonomy, slug, description, parent
		 FROM terms WHERE name = ? AND taxonomy = ? AND parent = ?`,
		name, taxonomy, parent,
	)
	term, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding term %q: %w", name, err)
	}
	return term, nil
}

// DeleteTerm removes a term and its post assignments.
func (s *Store) DeleteTerm(id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM terms WHERE term_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting term %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if _, err := db.Exec("DELETE FROM term_relationships WHERE term_id = ?", id); err != nil {
		return fmt.Errorf("deleting term %d assignments: %w", id, err)
	}
	return nil
}

// ListTerms returns all terms of a taxonomy, or every term when taxonomy
// is empty, ordered by ID.
func (s *Store) ListTerms(taxonomy string) ([]*types.Term, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT term_id, name, taxonomy, slug, description, parent FROM terms"
	var args []any
	if taxonomy != "" {
		query += " WHERE taxonomy = ?"
		args = append(args, taxonomy)
	}
	query += " ORDER BY term_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing terms: %w", err)
	}
	defer rows.Close()

	var terms []*types.Term
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning term: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// TermsForPost returns the terms of a taxonomy attached to a post, in
// assignment order.
func (s *Store) TermsForPost(postID int64, taxonomy string) ([]*types.Term, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT t.term_id, t.name, t.taxonomy, t.slug, t.description, t.parent
		 FROM terms t
		 JOIN term_relationships r ON r.term_id = t.term_id
		 WHERE r.post_id = ? AND t.taxonomy = ?
		 ORDER BY r.position, t.term_id`,
		postID, taxonomy,
	)
	if err != nil {
		return nil, fmt.Errorf("terms for post %d: %w", postID, err)
	}
	defer rows.Close()

	var terms []*types.Term
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning term: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// AttachTerms assigns terms to a post, appending after existing
// assignments or replacing them.
func (s *Store) AttachTerms(postID int64, termIDs []int64, appendTerms bool) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	position := 0
	if appendTerms {
		if err := tx.QueryRow(
			"SELECT COALESCE(MAX(position)+1, 0) FROM term_relationships WHERE post_id = ?",
			postID,
		).Scan(&position); err != nil {
			return fmt.Errorf("next term position: %w", err)
		}
	} else {
		if _, err := tx.Exec("DELETE FROM term_relationships WHERE post_id = ?", postID); err != nil {
			return fmt.Errorf("clearing term assignments: %w", err)
		}
	}

	for i, termID := range termIDs {
		var exists bool
		err := tx.QueryRow("SELECT 1 FROM terms WHERE term_id = ?", termID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("attach term %d: %w", termID, types.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO term_relationships (post_id, term_id, position) VALUES (?, ?, ?)`,
			postID, termID, position+i,
		); err != nil {
			return fmt.Errorf("attaching term %d: %w", termID, err)
		}
	}

	return tx.Commit()
}

// TaxonomiesForPostType returns the built-in taxonomies of the post type
// plus every schema-declared taxonomy whose definition lists it.
func (s *Store) TaxonomiesForPostType(postType string) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var taxonomies []string
	if postType == "post" {
		taxonomies = append(taxonomies, types.BuiltinTaxonomies...)
	}

	rows, err := db.Query(
		"SELECT key, def FROM schema_definitions WHERE kind = ? ORDER BY key",
		string(types.SchemaTaxonomies),
	)
	if err != nil {
		return nil, fmt.Errorf("listing taxonomy schemas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, def string
		if err := rows.Scan(&key, &def); err != nil {
			return nil, err
		}
		for _, pt := range gjson.Get(def, "postTypes").Array() {
			if pt.String() == postType {
				taxonomies = append(taxonomies, key)
				break
			}
		}
	}
	return taxonomies, rows.Err()
}

func scanTerm(row rowScanner) (*types.Term, error) {
	var t types.Term
	err := row.Scan(&t.TermID, &t.Name, &t.Taxonomy, &t.Slug, &t.Description, &t.Parent)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
