package drag

import (
	"math"
	"sync"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
)

// DefaultSwipeThreshold is the vertical distance that dismisses a card
const DefaultSwipeThreshold = 100

// SwipeResult is the end state of a card swipe
type SwipeResult struct {
	CardID    string `json:"cardId"`
	Dismissed bool   `json:"dismissed"`
	// Offset is where the card comes to rest: 0 when it snaps back, fully
	// off-screen when dismissed
	Offset float64 `json:"offset"`
}

type swipeState struct {
	start  geometry.Point
	offset float64
}

// Swipe tracks vertical swipes on recent-apps cards
type Swipe struct {
	mu        sync.Mutex
	threshold float64
	cards     map[string]*swipeState
}

// NewSwipe creates a tracker; threshold <= 0 uses DefaultSwipeThreshold
func NewSwipe(threshold float64) *Swipe {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &Swipe{threshold: threshold, cards: make(map[string]*swipeState)}
}

// Start begins tracking a card
func (s *Swipe) Start(cardID string, p geometry.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[cardID] = &swipeState{start: p}
}

// Move returns the card's current vertical offset
func (s *Swipe) Move(cardID string, p geometry.Point) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.cards[cardID]
	if !ok {
		return 0, false
	}
	st.offset = p.Y - st.start.Y
	return st.offset, true
}

// End finishes the swipe. viewportHeight is how far a dismissed card
// travels to leave the screen.
func (s *Swipe) End(cardID string, viewportHeight float64) (SwipeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.cards[cardID]
	if !ok {
		return SwipeResult{}, false
	}
	delete(s.cards, cardID)

	if math.Abs(st.offset) < s.threshold {
		return SwipeResult{CardID: cardID}, true
	}
	return SwipeResult{
		CardID:    cardID,
		Dismissed: true,
		Offset:    math.Copysign(viewportHeight, st.offset),
	}, true
}

// Reset drops every tracked card
func (s *Swipe) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = make(map[string]*swipeState)
}
