package types

// Built-in taxonomies registered for the "post" type.
var BuiltinTaxonomies = []string{"category", "post_tag"}

// Term is a taxonomy term. Within a manifest, term identity is by TermID,
// not by name+taxonomy: the same term referenced from several posts is
// carried (and imported) once.
type Term struct {
	TermID      int64  `json:"termId"`
	Name        string `json:"name"`
	Taxonomy    string `json:"taxonomy"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Parent      int64  `json:"parent,omitempty"`
}
