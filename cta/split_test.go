package cta

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraphs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Paragraph %d has some prose in it.", i)
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func assertReconstructs(t *testing.T, content string, r Result) {
	t.Helper()
	assert.Equal(t, normalize(content), normalize(r.Before+"\n\n"+r.After))
}

func TestSplit_ExplicitMarker(t *testing.T) {
	content := "Intro paragraph.\n\n<!-- CTA -->\n\nRest of the post."
	r := Split(content)

	assert.True(t, r.Explicit)
	assert.Empty(t, r.Variant)
	assert.Equal(t, "<!-- CTA -->", r.Marker)
	assert.Equal(t, content, r.Before+r.Marker+r.After)
	assert.Equal(t, "Intro paragraph.", strings.TrimSpace(r.Before))
	assert.Equal(t, "Rest of the post.", strings.TrimSpace(r.After))
}

func TestSplit_ExplicitMarkerWithVariant(t *testing.T) {
	content := "# Title\n\nText\n<!--cta: Newsletter-->\nMore"
	r := Split(content)

	assert.True(t, r.Explicit)
	assert.Equal(t, "newsletter", r.Variant)
	assert.Equal(t, content, r.Before+r.Marker+r.After)
}

func TestSplit_ExplicitMarkerOnlyFirstIsUsed(t *testing.T) {
	content := "a\n<!-- CTA:one -->\nb\n<!-- CTA:two -->\nc"
	r := Split(content)

	assert.Equal(t, "one", r.Variant)
	assert.Contains(t, r.After, "<!-- CTA:two -->")
}

func TestSplit_IgnoresMarkerInCodeFence(t *testing.T) {
	content := "Intro text here.\n\n```html\n<!-- CTA -->\n```\n\nMore prose.\n\n## Section\n\nClosing prose."
	r := Split(content)

	assert.False(t, r.Explicit)
	assert.Contains(t, r.Before, "```html\n<!-- CTA -->\n```")
	assert.True(t, strings.HasPrefix(r.After, "## Section"))
	assertReconstructs(t, content, r)
}

func TestSplit_MarkerAfterFencedExampleIsUsed(t *testing.T) {
	content := "Intro.\n\n~~~\n<!-- CTA:services -->\n~~~\n\nText.\n<!-- CTA:newsletter -->\nRest."
	r := Split(content)

	require.True(t, r.Explicit)
	assert.Equal(t, "newsletter", r.Variant)
	assert.Equal(t, content, r.Before+r.Marker+r.After)
	assert.Contains(t, r.Before, "<!-- CTA:services -->")
}

func TestSplit_BeforeH2AfterTarget(t *testing.T) {
	lines := []string{
		"## Early heading", "", "p1", "", "p2", "", "p3", "",
		"## Middle heading", "", "p4", "", "p5",
	}
	content := strings.Join(lines, "\n")
	r := Split(content)

	require.False(t, r.Explicit)
	assert.True(t, strings.HasPrefix(r.After, "## Middle heading"))
	assert.True(t, strings.HasSuffix(r.Before, "p3"))
	assertReconstructs(t, content, r)
}

func TestSplit_H2PreferredOverEarlierH3(t *testing.T) {
	lines := append(paragraphs(4), "### Sub", "text", "", "## Section", "text")
	content := strings.Join(lines, "\n")
	r := Split(content)

	assert.True(t, strings.HasPrefix(r.After, "## Section"))
	assertReconstructs(t, content, r)
}

func TestSplit_FallsBackToH3(t *testing.T) {
	lines := []string{"p0", "", "p1", "", "p2", "", "### Details", "", "p3", "", "p4"}
	content := strings.Join(lines, "\n")
	r := Split(content)

	assert.True(t, strings.HasPrefix(r.After, "### Details"))
	assert.Equal(t, "p0\n\np1\n\np2", r.Before)
}

func TestSplit_HeadingWithoutBlankLineAbove(t *testing.T) {
	lines := []string{"p0", "p1", "p2", "p3", "## Next", "p4"}
	r := Split(strings.Join(lines, "\n"))

	assert.Equal(t, "p0\np1\np2\np3", r.Before)
	assert.Equal(t, "## Next\np4", r.After)
}

func TestSplit_IgnoresHeadingsInCodeFence(t *testing.T) {
	lines := []string{
		"p0", "", "p1", "", "p2", "",
		"```bash", "## not a heading", "echo hi", "```",
		"", "p3", "", "p4",
	}
	content := strings.Join(lines, "\n")
	r := Split(content)

	block := "```bash\n## not a heading\necho hi\n```"
	assert.NotEqual(t, "## not a heading", strings.SplitN(r.After, "\n", 2)[0])
	assert.True(t, strings.Contains(r.Before, block) || strings.Contains(r.After, block))
	assertReconstructs(t, content, r)
}

func TestSplit_BlankLineNearestTarget(t *testing.T) {
	// 10 lines, target index 4; blank lines at 1, 3, 5, 7 -> 3 and 5 tie, 5 wins
	lines := []string{"a", "", "b", "", "c", "", "d", "", "e", "f"}
	r := Split(strings.Join(lines, "\n"))

	assert.Equal(t, "a\n\nb\n\nc", r.Before)
	assert.Equal(t, "d\n\ne\nf", r.After)
}

func TestSplit_SkipsStructuralNeighbours(t *testing.T) {
	lines := []string{
		"Intro text here.", "",
		"- item one", "",
		"- item two", "",
		"| a | b |", "",
		"> quoted", "",
		"<div>raw</div>", "",
		"[ref]: https://example.com", "",
		"Closing text.", "",
		"Final words.",
	}
	content := strings.Join(lines, "\n")
	r := Split(content)

	assert.Equal(t, "Final words.", r.After)
	assertReconstructs(t, content, r)
}

func TestSplit_UnsplittableContent(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"short":      "just one line",
		"two lines":  "one\ntwo",
		"code only":  "```go\nfunc main() {\n\n\tprintln()\n\n}\n```",
		"list only":  "- a\n\n- b\n\n- c\n\n- d",
		"no blanks":  "a\nb\nc\nd\ne",
		"open fence": "text\n```\ncode\n\nmore code\n\nstill code",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			r := Split(content)
			assert.False(t, r.Explicit)
			assert.Equal(t, strings.TrimSpace(content), r.Before)
			assert.Empty(t, r.After)
		})
	}
}

func TestSplit_HeadingOnFirstLineOnly(t *testing.T) {
	r := Split("## Only heading\nline\nline")
	assert.Equal(t, "## Only heading\nline\nline", r.Before)
	assert.Empty(t, r.After)
}

func TestCatalogResolve(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "newsletter", c.Resolve("Newsletter").Variant)
	assert.Equal(t, DefaultVariant, c.Resolve("").Variant)
	assert.Equal(t, DefaultVariant, c.Resolve("missing").Variant)
}
