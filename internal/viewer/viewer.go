package viewer

import (
	"errors"

	"github.com/studymate-app/studymate/pkg/models"
)

// ErrEmptySet is returned by Open for a set with no cards; the viewer
// only ever opens with a valid current card.
var ErrEmptySet = errors.New("flashcard set is empty")

// Viewer is the study-view state machine: Closed, or Open on one card of
// a loaded set with a flip state. Navigation at either boundary is a
// no-op, never a wraparound.
type Viewer struct {
	cards   []models.Flashcard
	docName string
	open    bool
	index   int
	flipped bool
}

func New() *Viewer {
	return &Viewer{}
}

// Open loads a set and starts at the first card, question side up.
// The set and document name always travel together.
func (v *Viewer) Open(cards []models.Flashcard, docName string) error {
	if len(cards) == 0 {
		return ErrEmptySet
	}
	v.cards = cards
	v.docName = docName
	v.open = true
	v.index = 0
	v.flipped = false
	return nil
}

// Next advances to the following card, resetting the flip state. On the
// last card it does nothing.
func (v *Viewer) Next() {
	if !v.open || v.index+1 >= len(v.cards) {
		return
	}
	v.index++
	v.flipped = false
}

// Prev steps back one card, resetting the flip state. On the first card
// it does nothing.
func (v *Viewer) Prev() {
	if !v.open || v.index == 0 {
		return
	}
	v.index--
	v.flipped = false
}

// Flip toggles between question and answer of the current card.
func (v *Viewer) Flip() {
	if !v.open {
		return
	}
	v.flipped = !v.flipped
}

// Close discards the loaded set and name.
func (v *Viewer) Close() {
	*v = Viewer{}
}

func (v *Viewer) IsOpen() bool {
	return v.open
}

func (v *Viewer) Index() int {
	return v.index
}

func (v *Viewer) Len() int {
	return len(v.cards)
}

func (v *Viewer) Flipped() bool {
	return v.flipped
}

func (v *Viewer) DocName() string {
	return v.docName
}

// Current returns the card under the cursor, or a zero card when closed.
func (v *Viewer) Current() models.Flashcard {
	if !v.open {
		return models.Flashcard{}
	}
	return v.cards[v.index]
}
