// internal/game/types.go
//
// Core type definitions for the navigation game engine.
// Defines:
//   - Role: which slot an article selection fills (start/target).
//   - Article: one immutable fetched article.
//   - State: the full game-state record exposed to the presentation layer.
//   - Collaborator interfaces: Fetcher, HintProvider, LinkRewriter, Notifier.
//   - Sentinel errors for setup validation.

package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/wikiwander/go-server/internal/links"
	"github.com/wikiwander/go-server/internal/wiki"
)

// Role identifies which end of the race an article selection fills.
type Role string

const (
	RoleStart  Role = "start"
	RoleTarget Role = "target"
)

// Valid reports whether r names a known role.
func (r Role) Valid() bool { return r == RoleStart || r == RoleTarget }

// Article is one fetched article. Immutable once constructed; a new
// navigation always produces a new Article.
type Article struct {
	Title        string       `json:"title"`                 // normalized title, identity key
	DisplayTitle string       `json:"displayTitle"`          // title for display
	HTML         string       `json:"htmlContent,omitempty"` // sanitized, link-rewritten body
	Links        []links.Link `json:"links,omitempty"`       // classified links for the presentation layer
	Summary      string       `json:"summary,omitempty"`     // short description
	IsError      bool         `json:"isError,omitempty"`     // true for degraded/error pages
}

// State is the single game-state record. Conceptually owned by the
// Session; readers only ever see fully-applied snapshots.
//
// Invariants maintained by the Session:
//   - history[0] is the start article's content once a game starts.
//   - history[len-1] == currentArticle always.
//   - clicks == len(history)-1 while active.
//   - isGameWon implies current title == target title and !isGameActive.
type State struct {
	StartArticle   *Article   `json:"startArticle"`
	TargetArticle  *Article   `json:"targetArticle"`
	CurrentArticle *Article   `json:"currentArticle"`
	History        []*Article `json:"history"`
	Clicks         int        `json:"clicks"`
	ElapsedTime    int        `json:"elapsedTime"` // seconds
	Active         bool       `json:"isGameActive"`
	Won            bool       `json:"isGameWon"`
	Loading        bool       `json:"isLoading"`
	LoadingHint    bool       `json:"isLoadingHint"`
	Hint           string     `json:"hint,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
}

// Phase reports a coarse string representation of the lifecycle state.
func (s *State) Phase() string {
	switch {
	case s.Won:
		return "won"
	case s.Active:
		return "active"
	case s.TargetArticle != nil && len(s.History) > 0:
		return "surrendered"
	default:
		return "setup"
	}
}

// Setup validation failures. Recoverable; they block Start only.
var (
	ErrSetupIncomplete   = errors.New("select both start and target articles first")
	ErrDuplicateArticles = errors.New("start and target articles cannot be the same")
)

// Fetcher is the external article-content collaborator.
type Fetcher interface {
	// RandomSummary picks a random article, retried once internally when
	// the first result is a non-standard page.
	RandomSummary(ctx context.Context) (*wiki.Summary, error)
	// Summary resolves a title; (nil, nil) when the article doesn't exist.
	Summary(ctx context.Context, title string) (*wiki.Summary, error)
	// Content fetches a full body; never fails outward (error-flagged Page).
	Content(ctx context.Context, title string) *wiki.Page
	// Search returns prefix-matched titles, empty on blank input or failure.
	Search(ctx context.Context, term string) []string
}

// HintProvider is the external AI hint collaborator.
type HintProvider interface {
	Hint(ctx context.Context, current, target string) (string, error)
}

// LinkRewriter sanitizes untrusted hypertext and classifies its links.
type LinkRewriter interface {
	Rewrite(fragment string) (string, []links.Link, error)
}

// Notifier is the fire-and-forget user-visible message collaborator
// (the presentation layer's toast subsystem).
type Notifier interface {
	Notify(kind, title, message string)
}

// LogNotifier is the default Notifier; it writes notifications to the log.
type LogNotifier struct{}

// Notify logs the notification.
func (LogNotifier) Notify(kind, title, message string) {
	log.Info().Str("kind", kind).Str("title", title).Msg(message)
}
