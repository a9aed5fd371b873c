package types

// Post statuses used by the pipelines. The collector exports published
// posts only; the store accepts any status string.
const (
	StatusPublished = "publish"
	StatusDraft     = "draft"
)

// Built-in content post types, always part of the default export set.
var BuiltinPostTypes = []string{"post", "page"}

// Post is a content entry. The JSON shape doubles as the manifest post
// record; GUID is host-internal and is stripped before the record enters
// a manifest (the importing host regenerates it).
type Post struct {
	ID      int64  `json:"postId,omitempty"`
	Type    string `json:"postType"`
	Title   string `json:"postTitle"`
	Content string `json:"postContent"`
	Excerpt string `json:"postExcerpt,omitempty"`
	Status  string `json:"postStatus"`
	Slug    string `json:"postName,omitempty"`
	Date    string `json:"postDate,omitempty"`
	Parent  int64  `json:"postParent,omitempty"`
	GUID    string `json:"guid,omitempty"`
}

// Clone returns a copy of the post.
func (p *Post) Clone() *Post {
	cp := *p
	return &cp
}
