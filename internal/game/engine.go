// internal/game/engine.go
//
// Session state machine for a single navigation game.
// Responsibilities:
//   - Own the GameState record and its lifecycle:
//     setup → active → won/surrendered → (reset) setup.
//   - Article selection for both roles (by title or random).
//   - Start validation (both roles selected, distinct normalized titles).
//   - Navigation transitions with win detection, click counting, and
//     append-only history.
//   - Hint requests against the AI collaborator.
//   - Error recovery: every collaborator failure degrades to a state-
//     visible message; the machine never leaves a recoverable state.
//
// Concurrency model: one mutex serializes all state commits. The Loading
// and LoadingHint flags are mutex-like gates, checked-and-set under the
// lock; network calls happen outside it so the session stays responsive,
// and results are committed atomically afterwards. Readers only ever see
// full snapshots.

package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wikiwander/go-server/internal/suggest"
	"github.com/wikiwander/go-server/internal/wiki"
)

// extract is cut to this many runes when a summary has no description.
const extractPreviewLen = 150

// Config carries the collaborators a Session needs.
type Config struct {
	Fetcher  Fetcher
	Hints    HintProvider
	Rewriter LinkRewriter
	Notifier Notifier      // nil → LogNotifier
	Debounce time.Duration // suggestion debounce window; 0 → default
}

// Session owns one game's state and its collaborators.
type Session struct {
	ID string

	mu    sync.Mutex
	state State
	timer *Timer

	fetcher  Fetcher
	hints    HintProvider
	rewriter LinkRewriter
	notifier Notifier
	suggests *suggest.Box
}

// NewSession constructs an empty session in the setup phase.
func NewSession(cfg Config) *Session {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	s := &Session{
		ID:       randomID(),
		timer:    NewTimer(),
		fetcher:  cfg.Fetcher,
		hints:    cfg.Hints,
		rewriter: cfg.Rewriter,
		notifier: notifier,
	}
	s.suggests = suggest.NewBox(cfg.Fetcher.Search, cfg.Debounce)
	return s
}

// Snapshot returns a consistent copy of the game state with live elapsed
// time. The returned value never aliases mutable session internals.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.ElapsedTime = s.timer.Elapsed()
	out.History = append([]*Article{}, s.state.History...)
	return out
}

// ---------------------------- article selection ----------------------------

// SelectArticle resolves an article for the given role. A non-empty title
// goes through the summary lookup; not-found leaves any prior selection
// untouched and sets a scoped error message. An empty title picks a random
// article. The last call to complete wins.
func (s *Session) SelectArticle(ctx context.Context, role Role, title string) {
	s.mu.Lock()
	s.state.Loading = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	var sum *wiki.Summary
	var err error
	if title != "" {
		sum, err = s.fetcher.Summary(ctx, title)
		if err != nil || sum == nil {
			if err != nil {
				log.Warn().Err(err).Str("title", title).Msg("summary lookup failed")
			}
			s.commitError(fmt.Sprintf("Article %q not found.", title))
			return
		}
	} else {
		sum, err = s.fetcher.RandomSummary(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("random article fetch failed")
			s.commitError("Failed to fetch random article.")
			return
		}
	}

	article := &Article{
		Title:        sum.Titles.Normalized,
		DisplayTitle: sum.Titles.Normalized,
		Summary:      shortDescription(sum),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if role == RoleStart {
		s.state.StartArticle = article
	} else {
		s.state.TargetArticle = article
	}
	s.state.Loading = false
}

// ------------------------------- lifecycle ---------------------------------

// Start validates the setup and begins the game: fetches the start
// article's content, seeds the history, zeroes the click counter, and
// starts the timer. Validation failures surface both as a returned
// sentinel error and as a user-visible state message.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return nil
	}
	if s.state.StartArticle == nil || s.state.TargetArticle == nil {
		s.state.ErrorMessage = ErrSetupIncomplete.Error()
		s.mu.Unlock()
		return ErrSetupIncomplete
	}
	if sameTitle(s.state.StartArticle.Title, s.state.TargetArticle.Title) {
		s.state.ErrorMessage = ErrDuplicateArticles.Error()
		s.mu.Unlock()
		return ErrDuplicateArticles
	}
	s.state.Loading = true
	s.state.ErrorMessage = ""
	startTitle := s.state.StartArticle.Title
	s.mu.Unlock()

	content := s.buildArticle(ctx, startTitle)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentArticle = content
	s.state.History = []*Article{content}
	s.state.Clicks = 0
	s.state.Active = true
	s.state.Won = false
	s.state.Hint = ""
	s.state.Loading = false
	s.timer.Reset()
	s.timer.Start()
	return nil
}

// Navigate follows a classified article link. No-op unless the game is
// active and no fetch is in flight (guards rapid double-activation). A
// fetch failure sets an error message but keeps the game active; the
// player may retry or is stuck, never auto-failed.
func (s *Session) Navigate(ctx context.Context, title string) {
	s.mu.Lock()
	if !s.state.Active || s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = true
	s.state.Hint = ""
	s.state.ErrorMessage = ""
	target := s.state.TargetArticle
	s.mu.Unlock()

	article := s.buildArticle(ctx, title)
	if article.IsError {
		s.commitError(fmt.Sprintf("Failed to load %s. You might be stuck.", article.DisplayTitle))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = append(s.state.History, article)
	s.state.Clicks++
	s.state.CurrentArticle = article
	s.state.Loading = false

	if target != nil && sameTitle(article.Title, target.Title) {
		s.timer.Stop()
		s.state.Won = true
		s.state.Active = false
		s.state.ElapsedTime = s.timer.Elapsed()
		s.notifier.Notify("success", "Congratulations!",
			fmt.Sprintf("You reached %s in %d clicks and %s.",
				target.DisplayTitle, s.state.Clicks, FormatElapsed(s.state.ElapsedTime)))
	}
}

// RequestHint asks the AI collaborator for a nudge toward the target.
// No-op without a current and target article or while a request is in
// flight. A failure clears the loading flag and leaves any previous hint
// untouched.
func (s *Session) RequestHint(ctx context.Context) {
	s.mu.Lock()
	if s.state.CurrentArticle == nil || s.state.TargetArticle == nil || s.state.LoadingHint {
		s.mu.Unlock()
		return
	}
	s.state.LoadingHint = true
	s.state.ErrorMessage = ""
	current := s.state.CurrentArticle.DisplayTitle
	target := s.state.TargetArticle.DisplayTitle
	s.mu.Unlock()

	hint, err := s.hints.Hint(ctx, current, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LoadingHint = false
	if err != nil {
		log.Warn().Err(err).Msg("hint request failed")
		s.state.ErrorMessage = "Failed to get hint."
		return
	}
	s.state.Hint = hint
}

// Restart replaces the game state with its initial empty value and clears
// the suggestion buffers. Legal from any phase; the only way out of a
// terminal state.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Reset()
	s.state = State{}
	s.suggests.Reset()
}

// Surrender ends an active game without a win and announces the target.
// No-op outside the active phase.
func (s *Session) Surrender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Active {
		return
	}
	s.timer.Stop()
	s.state.Active = false
	s.state.ElapsedTime = s.timer.Elapsed()
	s.notifier.Notify("destructive", "Game Over",
		fmt.Sprintf("You surrendered. The target was %s.", s.state.TargetArticle.DisplayTitle))
}

// ------------------------------ suggestions --------------------------------

// SuggestInput forwards a keystroke to the field's debouncer.
func (s *Session) SuggestInput(field suggest.Field, text string) {
	s.suggests.Input(field, text)
}

// DismissSuggestions hides the field's suggestion panel.
func (s *Session) DismissSuggestions(field suggest.Field) {
	s.suggests.Dismiss(field)
}

// SuggestState returns the field's current suggestion state.
func (s *Session) SuggestState(field suggest.Field) suggest.State {
	return s.suggests.State(field)
}

// -------------------------------- helpers ----------------------------------

// buildArticle fetches content and runs it through the sanitizing link
// rewriter. A rewriter failure degrades to an error-flagged article, same
// as a fetch failure.
func (s *Session) buildArticle(ctx context.Context, title string) *Article {
	page := s.fetcher.Content(ctx, title)
	article := &Article{
		Title:        page.Title,
		DisplayTitle: page.DisplayTitle,
		Summary:      page.Summary,
		IsError:      page.IsError,
	}
	if page.IsError {
		article.HTML = page.HTML
		return article
	}
	html, classified, err := s.rewriter.Rewrite(page.HTML)
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("rewrite article body")
		article.HTML = "<p>Error preparing article content.</p>"
		article.IsError = true
		return article
	}
	article.HTML = html
	article.Links = classified
	return article
}

// commitError clears the loading gate and records a user-visible message.
func (s *Session) commitError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	s.state.ErrorMessage = msg
}

// shortDescription prefers the curated description, falling back to a
// truncated extract.
func shortDescription(sum *wiki.Summary) string {
	if sum.Description != "" {
		return sum.Description
	}
	extract := []rune(sum.Extract)
	if len(extract) > extractPreviewLen {
		return string(extract[:extractPreviewLen]) + "..."
	}
	return string(extract)
}

// sameTitle compares normalized titles: case-insensitive, underscores as
// spaces, runs of whitespace collapsed.
func sameTitle(a, b string) bool {
	return normalizeTitle(a) == normalizeTitle(b)
}

func normalizeTitle(t string) string {
	t = strings.ReplaceAll(t, "_", " ")
	t = strings.Join(strings.Fields(t), " ")
	return strings.ToLower(t)
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
