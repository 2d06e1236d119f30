// internal/suggest/suggest.go
//
// Trailing-edge debouncer for live search suggestions.
// Responsibilities:
//   - One independent state bucket per input field (start, target).
//   - Classic trailing-edge debounce: at most one query per quiet period;
//     any keystroke inside the delay window re-arms it.
//   - Inputs of trimmed length <= 2 clear and hide the panel synchronously
//     with no query issued.
//   - A per-field generation counter cancels superseded queries: a stale
//     response never mutates visible suggestion state, regardless of the
//     order in which overlapping queries resolve.

package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Field identifies which input the suggestions belong to.
type Field string

const (
	FieldStart  Field = "start"
	FieldTarget Field = "target"
)

// Valid reports whether f names a known field.
func (f Field) Valid() bool { return f == FieldStart || f == FieldTarget }

// DefaultDelay is the debounce quiet period.
const DefaultDelay = 300 * time.Millisecond

// minQueryLen is the trimmed length above which a query is issued.
const minQueryLen = 2

// SearchFunc resolves a prefix to suggestion titles. Failures surface as
// an empty slice; the debouncer never retries.
type SearchFunc func(ctx context.Context, term string) []string

// State is the read-only per-field view exposed to the presentation layer.
type State struct {
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
	Loading     bool     `json:"isLoading"`
	Visible     bool     `json:"isVisible"`
}

// field holds the mutable bucket for one input.
type field struct {
	text        string
	suggestions []string
	loading     bool
	visible     bool
	gen         uint64 // bumped on every keystroke; stale queries compare against it
	pending     *time.Timer
}

// Box owns the debounce state for both fields.
type Box struct {
	mu     sync.Mutex
	fields map[Field]*field
	search SearchFunc
	delay  time.Duration
}

// NewBox wires a Box to a search function. delay <= 0 uses DefaultDelay.
func NewBox(search SearchFunc, delay time.Duration) *Box {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Box{
		fields: map[Field]*field{
			FieldStart:  {},
			FieldTarget: {},
		},
		search: search,
		delay:  delay,
	}
}

// Input records a keystroke for the field. Short inputs clear the panel
// immediately; longer ones (re)arm the trailing debounce window.
func (b *Box) Input(f Field, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs := b.field(f)
	fs.text = text
	fs.gen++
	if fs.pending != nil {
		fs.pending.Stop()
		fs.pending = nil
	}

	if len(strings.TrimSpace(text)) <= minQueryLen {
		fs.suggestions = nil
		fs.visible = false
		fs.loading = false
		return
	}

	gen := fs.gen
	fs.pending = time.AfterFunc(b.delay, func() {
		b.fire(f, gen, text)
	})
}

// fire runs when a debounce window elapses without further keystrokes.
// It issues the query and applies the result only if no newer keystroke
// has arrived in the meantime.
func (b *Box) fire(f Field, gen uint64, term string) {
	b.mu.Lock()
	fs := b.field(f)
	if fs.gen != gen {
		b.mu.Unlock()
		return
	}
	fs.loading = true
	b.mu.Unlock()

	results := b.search(context.Background(), term)

	b.mu.Lock()
	defer b.mu.Unlock()
	if fs.gen != gen {
		// Superseded while in flight; discard.
		return
	}
	fs.suggestions = results
	fs.loading = false
	fs.visible = true
}

// Dismiss hides the field's panel (outside-interaction hook for the
// presentation layer). Text and pending queries are untouched.
func (b *Box) Dismiss(f Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.field(f).visible = false
}

// Reset clears both fields and cancels any pending windows.
func (b *Box) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fs := range b.fields {
		if fs.pending != nil {
			fs.pending.Stop()
		}
		*fs = field{gen: fs.gen + 1}
	}
}

// State returns a snapshot of the field's visible state.
func (b *Box) State(f Field) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	fs := b.field(f)
	out := State{
		Text:        fs.text,
		Suggestions: append([]string(nil), fs.suggestions...),
		Loading:     fs.loading,
		Visible:     fs.visible,
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	return out
}

// field returns the bucket for f, creating it for unknown fields so a bad
// caller degrades to harmless isolated state instead of a panic.
func (b *Box) field(f Field) *field {
	fs, ok := b.fields[f]
	if !ok {
		fs = &field{}
		b.fields[f] = fs
	}
	return fs
}
