// internal/links/links.go
//
// Hypertext sanitizer + link classifier for fetched article bodies.
// Responsibilities:
//   - Neutralize executable content in untrusted third-party markup
//     (scripts, event handlers, javascript: URLs) before anything
//     interactive is attached to it.
//   - Partition every embedded hyperlink into one of five kinds:
//     article (navigable), namespace (non-article wiki page), external,
//     in-page anchor, or other.
//   - Rewrite link attributes so the presentation layer can wire its own
//     click handling from the returned Link list instead of trusting the
//     source markup.
//
// Classification is first-match-wins per link, order-independent across
// links, and idempotent: rewriting already-rewritten markup yields the
// same document and the same link list.

package links

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind labels the classification of a single hyperlink.
type Kind string

const (
	// KindArticle is a navigable internal article link (/wiki/<Title>).
	KindArticle Kind = "article"
	// KindNamespace is an internal link into a non-article namespace
	// (File:, Special:, Category:, ...). Opens on the source site.
	KindNamespace Kind = "namespace"
	// KindExternal is an absolute link with an explicit scheme.
	KindExternal Kind = "external"
	// KindAnchor is an in-page fragment link (citations, footnotes).
	KindAnchor Kind = "anchor"
	// KindOther is anything else (relative non-article paths, etc.).
	KindOther Kind = "other"
)

// Link describes one classified hyperlink and the action the presentation
// layer should take for it.
type Link struct {
	Href   string `json:"href"`             // original href as found in the document
	Kind   Kind   `json:"kind"`             // classification
	Title  string `json:"title,omitempty"`  // decoded article title (KindArticle only)
	Target string `json:"target,omitempty"` // absolute new-context URL (namespace/external)
}

// Namespaces that never count as articles. Compared case-insensitively
// against the path remainder after the article prefix.
var defaultDenylist = []string{
	"file:", "image:", "special:", "help:", "category:", "wikipedia:",
	"template:", "template_talk:", "portal:", "talk:", "draft:",
	"module:", "mediawiki:", "book:", "timedtext:",
}

// Elements that are removed wholesale during sanitization.
const strippedSelector = "script, style, iframe, object, embed, form, link, meta, noscript, base"

// Rewriter sanitizes and classifies article hypertext for one source site.
type Rewriter struct {
	baseURL  string   // e.g. https://en.wikipedia.org (no trailing slash)
	prefix   string   // article path prefix, e.g. /wiki/
	denylist []string // lowercase namespace prefixes
}

// NewRewriter builds a Rewriter for the given source site base URL.
// An empty baseURL defaults to English Wikipedia.
func NewRewriter(baseURL string) *Rewriter {
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org"
	}
	return &Rewriter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		prefix:   "/wiki/",
		denylist: defaultDenylist,
	}
}

// Deny extends the namespace denylist (entries like "gadget:").
func (r *Rewriter) Deny(namespaces ...string) {
	for _, ns := range namespaces {
		r.denylist = append(r.denylist, strings.ToLower(ns))
	}
}

// Rewrite sanitizes the fragment and classifies every hyperlink in it.
// Returns the rewritten markup plus the classified link list in document
// order. The input is treated as untrusted.
func (r *Rewriter) Rewrite(fragment string) (string, []Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", nil, err
	}

	sanitize(doc)

	links := []Link{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		// Re-runs see the rewritten href; recover the original so the
		// pass stays idempotent.
		if orig, ok := sel.Attr("data-href"); ok {
			href = orig
		}
		links = append(links, r.rewriteLink(sel, href))
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, err
	}
	return out, links, nil
}

// rewriteLink applies the first matching classification rule and adjusts
// the element's attributes accordingly.
func (r *Rewriter) rewriteLink(sel *goquery.Selection, href string) Link {
	switch kind := r.classify(href); kind {
	case KindArticle:
		title := decodeTitle(strings.TrimPrefix(href, r.prefix))
		// Suppress default navigation; the presentation layer reads the
		// data attributes and reports the intent back to the session.
		sel.SetAttr("data-href", href)
		sel.SetAttr("data-article", title)
		sel.SetAttr("href", "#")
		sel.AddClass("internal-wiki-link")
		return Link{Href: href, Kind: kind, Title: title}

	case KindNamespace:
		abs := r.baseURL + href
		sel.SetAttr("data-href", href)
		sel.SetAttr("href", abs)
		newContext(sel)
		sel.AddClass("non-article-wiki-link")
		return Link{Href: href, Kind: kind, Target: abs}

	case KindExternal:
		newContext(sel)
		sel.AddClass("external-wiki-link")
		return Link{Href: href, Kind: kind, Target: href}

	case KindAnchor:
		// Default same-page scroll behavior is preserved.
		sel.AddClass("citation-wiki-link")
		return Link{Href: href, Kind: kind}

	default:
		newContext(sel)
		return Link{Href: href, Kind: KindOther}
	}
}

// classify applies the rule order from the game design: article prefix
// (split article vs. namespace), explicit scheme, fragment, other.
func (r *Rewriter) classify(href string) Kind {
	if strings.HasPrefix(href, r.prefix) {
		rest := strings.ToLower(strings.TrimPrefix(href, r.prefix))
		for _, ns := range r.denylist {
			if strings.HasPrefix(rest, ns) {
				return KindNamespace
			}
		}
		return KindArticle
	}
	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return KindExternal
	}
	if strings.HasPrefix(href, "#") {
		return KindAnchor
	}
	return KindOther
}

// newContext marks a link for opening in a new, unrelated browsing context.
func newContext(sel *goquery.Selection) {
	sel.SetAttr("target", "_blank")
	sel.SetAttr("rel", "noopener noreferrer")
}

// decodeTitle percent-decodes an article path segment; malformed escapes
// fall back to the raw text rather than failing the whole document.
func decodeTitle(seg string) string {
	if d, err := url.PathUnescape(seg); err == nil {
		return d
	}
	return seg
}

// sanitize drops executable and document-mutating content from the parsed
// fragment. Runs before classification so nothing interactive is ever
// attached to unsafe markup.
func sanitize(doc *goquery.Document) {
	doc.Find(strippedSelector).Remove()

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}
		var drop []string
		for _, attr := range sel.Nodes[0].Attr {
			name := strings.ToLower(attr.Key)
			if strings.HasPrefix(name, "on") {
				drop = append(drop, attr.Key)
				continue
			}
			if name == "href" || name == "src" || name == "action" {
				if unsafeScheme(attr.Val) {
					drop = append(drop, attr.Key)
				}
			}
		}
		for _, name := range drop {
			sel.RemoveAttr(name)
		}
	})
}

// unsafeScheme reports whether a URL value smuggles executable content.
func unsafeScheme(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") || strings.HasPrefix(v, "data:")
}
