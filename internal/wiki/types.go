// internal/wiki/types.go
//
// Wire types for the Wikipedia REST and action APIs.
// Only the fields the game actually consumes are mapped.

package wiki

// Summary mirrors the REST v1 page summary payload.
type Summary struct {
	// Type distinguishes "standard" pages from disambiguation/special ones.
	Type string `json:"type"`

	Titles struct {
		Canonical  string `json:"canonical"`
		Normalized string `json:"normalized"`
		Display    string `json:"display"`
	} `json:"titles"`

	Description string `json:"description"`
	Extract     string `json:"extract"`

	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Standard reports whether the summary describes a normal article page.
func (s *Summary) Standard() bool { return s.Type == "standard" }

// Page is the result of a full-content fetch. Content fetches never fail
// outward; failures come back as an error-flagged Page instead.
type Page struct {
	Title        string // normalized title used for API calls and identity
	DisplayTitle string
	HTML         string // raw article hypertext (unsanitized)
	Summary      string // short description, set on the summary fallback path
	IsError      bool
}

// parseResult mirrors the action API's action=parse response
// (formatversion=2, prop=text).
type parseResult struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}
