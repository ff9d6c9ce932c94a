package service

import (
	"testing"
	"time"

	"anoa.com/campusforum/internal/entity"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestPostDoc(t *testing.T) {
	summary := "<p>Where do I find <b>past exams</b>?</p>"
	category := "academics"
	p := &entity.Post{
		ID:        uuid.New(),
		Title:     "Past <script>x</script>exams",
		Summary:   &summary,
		Category:  &category,
		Tags:      pq.StringArray{"exams"},
		AuthorID:  uuid.New(),
		CreatedAt: time.Unix(1700000000, 0),
	}

	doc := postDoc(p)
	require.Equal(t, p.ID.String(), doc.ID)
	require.Equal(t, "Past exams", doc.Title)
	require.Equal(t, "Where do I find past exams?", doc.Summary)
	require.Equal(t, "academics", doc.Category)
	require.Equal(t, []string{"exams"}, doc.Tags)
	require.EqualValues(t, 1700000000, doc.CreatedAt)

	empty := postDoc(&entity.Post{ID: uuid.New()})
	require.NotNil(t, empty.Tags)
	require.Empty(t, empty.Summary)
}
