package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/blueprint/pkg/types"
)

func TestCreateAndFindTerm(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateTerm(&types.Term{Name: "News", Taxonomy: "category"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	got, err := s.FindTerm("News", "category", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.TermID)

	// Same name under a different parent is a different term.
	_, err = s.FindTerm("News", "category", 7)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.CreateTerm(&types.Term{Name: "", Taxonomy: "category"}, 0)
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestDeleteTermRemovesAssignments(t *testing.T) {
	s := newTestStore(t)

	postID, err := s.CreatePost(&types.Post{Type: "post", Title: "P", Status: types.StatusPublished}, 0)
	require.NoError(t, err)
	termID, err := s.CreateTerm(&types.Term{Name: "News", Taxonomy: "category"}, 0)
	require.NoError(t, err)
	require.NoError(t, s.AttachTerms(postID, []int64{termID}, false))

	require.NoError(t, s.DeleteTerm(termID))

	terms, err := s.TermsForPost(postID, "category")
	require.NoError(t, err)
	assert.Empty(t, terms)

	assert.ErrorIs(t, s.DeleteTerm(termID), types.ErrNotFound)
}

func TestListTermsByTaxonomy(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTerm(&types.Term{Name: "News", Taxonomy: "category"}, 0)
	require.NoError(t, err)
	_, err = s.CreateTerm(&types.Term{Name: "go", Taxonomy: "post_tag"}, 0)
	require.NoError(t, err)

	cats, err := s.ListTerms("category")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "News", cats[0].Name)

	all, err := s.ListTerms("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAttachTermsAppendAndReplace(t *testing.T) {
	s := newTestStore(t)

	postID, err := s.CreatePost(&types.Post{Type: "post", Title: "P", Status: types.StatusPublished}, 0)
	require.NoError(t, err)

	var termIDs []int64
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		id, err := s.CreateTerm(&types.Term{Name: name, Taxonomy: "category"}, 0)
		require.NoError(t, err)
		termIDs = append(termIDs, id)
	}

	require.NoError(t, s.AttachTerms(postID, termIDs[:1], false))
	require.NoError(t, s.AttachTerms(postID, termIDs[1:2], true))

	got, err := s.TermsForPost(postID, "category")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Beta", got[1].Name)

	// Replace drops previous assignments.
	require.NoError(t, s.AttachTerms(postID, termIDs[2:], false))
	got, err = s.TermsForPost(postID, "category")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gamma", got[0].Name)
}

func TestAttachTermsRejectsUnknownTerm(t *testing.T) {
	s := newTestStore(t)

	postID, err := s.CreatePost(&types.Post{Type: "post", Title: "P", Status: types.StatusPublished}, 0)
	require.NoError(t, err)

	err = s.AttachTerms(postID, []int64{999}, true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTaxonomiesForPostType(t *testing.T) {
	s := newTestStore(t)
	p := NewProvider(s)

	require.NoError(t, p.Import(types.SchemaTaxonomies, "genre",
		[]byte(`{"key":"genre","postTypes":["book","post"]}`)))
	require.NoError(t, p.Import(types.SchemaTaxonomies, "series",
		[]byte(`{"key":"series","postTypes":["book"]}`)))

	forPost, err := s.TaxonomiesForPostType("post")
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "post_tag", "genre"}, forPost)

	forBook, err := s.TaxonomiesForPostType("book")
	require.NoError(t, err)
	assert.Equal(t, []string{"genre", "series"}, forBook)

	forPage, err := s.TaxonomiesForPostType("page")
	require.NoError(t, err)
	assert.Empty(t, forPage)
}
