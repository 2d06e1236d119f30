package links

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rewrite(t *testing.T, fragment string) (string, []Link) {
	t.Helper()
	out, ls, err := NewRewriter("").Rewrite(fragment)
	require.NoError(t, err)
	return out, ls
}

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		href  string
		kind  Kind
		title string
	}{
		{"/wiki/Foo", KindArticle, "Foo"},
		{"/wiki/Albert%20Einstein", KindArticle, "Albert Einstein"},
		{"/wiki/C%2B%2B", KindArticle, "C++"},
		{"/wiki/File:Foo.jpg", KindNamespace, ""},
		{"/wiki/file:lowercase.jpg", KindNamespace, ""},
		{"/wiki/Special:Random", KindNamespace, ""},
		{"/wiki/Help:Contents", KindNamespace, ""},
		{"/wiki/Category:Mammals", KindNamespace, ""},
		{"/wiki/Wikipedia:About", KindNamespace, ""},
		{"/wiki/Template:Infobox", KindNamespace, ""},
		{"/wiki/Portal:Science", KindNamespace, ""},
		{"https://example.com/x", KindExternal, ""},
		{"http://example.com/x", KindExternal, ""},
		{"mailto:someone@example.com", KindExternal, ""},
		{"#cite_note-3", KindAnchor, ""},
		{"/w/index.php?title=Foo", KindOther, ""},
		{"relative/path", KindOther, ""},
	}
	for _, tc := range cases {
		_, ls := rewrite(t, `<p><a href="`+tc.href+`">x</a></p>`)
		require.Len(t, ls, 1, "href=%s", tc.href)
		assert.Equal(t, tc.kind, ls[0].Kind, "href=%s", tc.href)
		assert.Equal(t, tc.title, ls[0].Title, "href=%s", tc.href)
	}
}

func TestArticleLinkRewrite(t *testing.T) {
	out, ls := rewrite(t, `<p>See the <a href="/wiki/Dog">dog</a>.</p>`)

	require.Len(t, ls, 1)
	assert.Equal(t, KindArticle, ls[0].Kind)
	assert.Equal(t, "Dog", ls[0].Title)
	assert.Equal(t, "/wiki/Dog", ls[0].Href)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	a := doc.Find("a")
	href, _ := a.Attr("href")
	assert.Equal(t, "#", href, "default navigation suppressed")
	title, _ := a.Attr("data-article")
	assert.Equal(t, "Dog", title)
	assert.True(t, a.HasClass("internal-wiki-link"))
}

func TestNamespaceLinkOpensOnSourceSite(t *testing.T) {
	out, ls := rewrite(t, `<a href="/wiki/File:Dog.jpg">photo</a>`)

	require.Len(t, ls, 1)
	assert.Equal(t, KindNamespace, ls[0].Kind)
	assert.Equal(t, "https://en.wikipedia.org/wiki/File:Dog.jpg", ls[0].Target)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	a := doc.Find("a")
	href, _ := a.Attr("href")
	assert.Equal(t, "https://en.wikipedia.org/wiki/File:Dog.jpg", href)
	target, _ := a.Attr("target")
	assert.Equal(t, "_blank", target)
	rel, _ := a.Attr("rel")
	assert.Equal(t, "noopener noreferrer", rel)
}

func TestExternalLinkNeverNavigatesCurrentContext(t *testing.T) {
	out, ls := rewrite(t, `<a href="https://example.com/x">out</a>`)

	require.Len(t, ls, 1)
	assert.Equal(t, KindExternal, ls[0].Kind)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	target, _ := doc.Find("a").Attr("target")
	assert.Equal(t, "_blank", target)
	rel, _ := doc.Find("a").Attr("rel")
	assert.Equal(t, "noopener noreferrer", rel)
}

func TestAnchorLinkUntouched(t *testing.T) {
	out, ls := rewrite(t, `<a href="#cite_note-1">[1]</a>`)

	require.Len(t, ls, 1)
	assert.Equal(t, KindAnchor, ls[0].Kind)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	href, _ := doc.Find("a").Attr("href")
	assert.Equal(t, "#cite_note-1", href, "in-page scroll behavior preserved")
	_, hasTarget := doc.Find("a").Attr("target")
	assert.False(t, hasTarget)
}

func TestSanitizeStripsExecutableContent(t *testing.T) {
	fragment := `<div onclick="steal()">
		<script>alert(1)</script>
		<iframe src="https://evil.example"></iframe>
		<style>body{}</style>
		<img src="x.png" onerror="steal()">
		<a href="javascript:steal()">click</a>
		<a href="/wiki/Safe">safe</a>
	</div>`
	out, ls := rewrite(t, fragment)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<iframe")
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "javascript:")

	// The javascript: link loses its href and therefore isn't classified;
	// the safe article link still is.
	require.Len(t, ls, 1)
	assert.Equal(t, "Safe", ls[0].Title)
}

func TestRewriteIsIdempotent(t *testing.T) {
	fragment := `<p><a href="/wiki/Dog">dog</a> <a href="/wiki/File:X.png">img</a> <a href="https://example.com">ext</a> <a href="#ref">[1]</a></p>`

	once, firstLinks := rewrite(t, fragment)
	twice, secondLinks := rewrite(t, once)

	assert.Equal(t, once, twice)
	assert.Equal(t, firstLinks, secondLinks)
}

func TestClassificationIsOrderIndependent(t *testing.T) {
	_, forward := rewrite(t, `<a href="/wiki/A">a</a><a href="/wiki/File:B">b</a>`)
	_, reversed := rewrite(t, `<a href="/wiki/File:B">b</a><a href="/wiki/A">a</a>`)

	require.Len(t, forward, 2)
	require.Len(t, reversed, 2)
	assert.Equal(t, forward[0], reversed[1])
	assert.Equal(t, forward[1], reversed[0])
}

func TestDenyExtendsNamespaces(t *testing.T) {
	r := NewRewriter("")
	r.Deny("Gadget:")

	_, ls, err := r.Rewrite(`<a href="/wiki/Gadget:Foo">g</a>`)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, KindNamespace, ls[0].Kind)
}

func TestCustomBaseURL(t *testing.T) {
	r := NewRewriter("https://de.wikipedia.org/")

	_, ls, err := r.Rewrite(`<a href="/wiki/Spezial:Foo">s</a><a href="/wiki/Special:X">x</a>`)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, "https://de.wikipedia.org/wiki/Special:X", ls[1].Target, "no double slash from trailing base slash")
}

func TestMalformedEscapeFallsBackToRawTitle(t *testing.T) {
	_, ls := rewrite(t, `<a href="/wiki/Bad%ZZEscape">b</a>`)
	require.Len(t, ls, 1)
	assert.Equal(t, KindArticle, ls[0].Kind)
	assert.Equal(t, "Bad%ZZEscape", ls[0].Title)
}
