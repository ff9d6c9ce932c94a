package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, "Hello world & friends", Text("<p>Hello</p><script>alert(1)</script>world  &amp; friends"))
	require.Equal(t, "", Text("   "))
}

func TestHTML(t *testing.T) {
	out := HTML(`<b>bold</b><img src=x onerror=alert(1)>`)
	require.Contains(t, out, "<b>bold</b>")
	require.NotContains(t, out, "onerror")
}

func TestTags(t *testing.T) {
	require.Equal(t, []string{"go", "Exams"}, Tags([]string{" go ", "", "<i>Exams</i>", "GO"}))
	require.Empty(t, Tags(nil))
}
