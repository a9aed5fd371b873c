package types

import "errors"

// ContentStore defines the interface to the host content runtime.
// Callers attach to a backend, perform entity CRUD, and detach when done.
// Create operations take an ID hint: the store tries to assign the hinted
// ID and falls back to a fresh one when the hint is zero or already taken.
// The actually-assigned ID is returned; callers must never assume the
// hint was honored.
type ContentStore interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns
	// ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrStoreDetached.
	Detach() error

	// CreatePost creates a post, assigning hintID when it is free.
	// A new GUID is always generated; any GUID on the value is ignored.
	CreatePost(post *Post, hintID int64) (int64, error)

	// GetPost retrieves a post by ID. Returns ErrNotFound if absent.
	GetPost(id int64) (*Post, error)

	// DeletePost removes a post together with its metadata and term
	// assignments. Returns ErrNotFound if no post exists with that ID.
	DeletePost(id int64) error

	// ListPosts returns all posts matching the filter, ordered by ID.
	ListPosts(filter PostFilter) ([]*Post, error)

	// CreateTerm creates a taxonomy term, assigning hintID when free.
	CreateTerm(term *Term, hintID int64) (int64, error)

	// FindTerm looks up a term by name, taxonomy, and parent. Returns
	// ErrNotFound when no such term exists.
	FindTerm(name, taxonomy string, parent int64) (*Term, error)

	// DeleteTerm removes a term and its post assignments.
	DeleteTerm(id int64) error

	// ListTerms returns all terms of a taxonomy, or every term when
	// taxonomy is empty, ordered by ID.
	ListTerms(taxonomy string) ([]*Term, error)

	// TermsForPost returns the terms of the given taxonomy attached to
	// the post, in assignment order.
	TermsForPost(postID int64, taxonomy string) ([]*Term, error)

	// AttachTerms assigns terms to a post. When appendTerms is true,
	// existing assignments are kept; otherwise they are replaced.
	AttachTerms(postID int64, termIDs []int64, appendTerms bool) error

	// TaxonomiesForPostType returns the taxonomy names registered for
	// the given post type.
	TaxonomiesForPostType(postType string) ([]string, error)

	// CreateMediaFromFile registers the file at path as a media entity,
	// copying it into the store's upload area, detecting its type, and
	// generating any derived renditions the host requires.
	CreateMediaFromFile(path string, hintID int64) (int64, error)

	// GetMedia retrieves a media entity by ID.
	GetMedia(id int64) (*Media, error)

	// DeleteMedia removes a media entity and its stored file.
	DeleteMedia(id int64) error

	// ListMedia returns every media entity, ordered by ID.
	ListMedia() ([]*Media, error)

	// MediaFilePath returns the absolute path of the stored file for a
	// media entity. Returns ErrNotFound if the entity is absent.
	MediaFilePath(id int64) (string, error)

	// PostMeta returns the metadata entries of a post in insertion
	// order. Multi-valued keys yield one entry per value.
	PostMeta(postID int64) ([]MetaEntry, error)

	// SetPostMeta writes a single metadata key/value pair for a post,
	// replacing any existing values for the key.
	SetPostMeta(postID int64, key string, value any) error

	// Option returns the value of a named option and whether it exists.
	Option(name string) (any, bool, error)

	// SetOption writes an option value, overwriting any existing value.
	SetOption(name string, value any) error

	// Version reports the host runtime version as a dotted string.
	Version() string

	// Theme reports the active theme slug.
	Theme() string
}

// PostFilter selects posts for ListPosts. Empty slices match everything.
type PostFilter struct {
	Types    []string
	Statuses []string
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("content store is detached")
	ErrAlreadyAttached = errors.New("content store is already attached")
)

// Entity operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)
