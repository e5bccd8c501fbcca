// Package srs implements the spaced-repetition scheduler used to decide
// when a word should be reviewed next. It is a pure module: the only
// external input is the clock, and it never touches storage or network.
package srs

import (
	"math"
	"time"

	"github.com/example/scanvocab/pkg/models"
)

// Tunables of the SM-2 derived update rule. Review quality is binarized:
// a correct answer counts as an easy recall, an incorrect one as a lapse.
const (
	// InitialEaseFactor is the ease factor assigned to a freshly saved word.
	InitialEaseFactor = 2.5
	// MinEaseFactor bounds how hard a word can become; the ease factor must
	// stay useful as an interval multiplier even after many lapses.
	MinEaseFactor = 1.3
	// lapsePenalty is subtracted from the ease factor on an incorrect answer.
	lapsePenalty = 0.2
	// correctBonus is added to the ease factor on a correct answer.
	correctBonus = 0.1
	// firstInterval and secondInterval are the fixed intervals for the first
	// two correct answers. Without the tier, interval 0 times any ease factor
	// would keep re-showing a new word on the same day.
	firstInterval  = 1
	secondInterval = 6
	// DefaultMasteryThreshold is the repetition streak at which a word is
	// reported as mastered.
	DefaultMasteryThreshold = 8
)

// Scheduler computes review state transitions. The zero value is not usable;
// create instances with New. Now is the clock and is replaced in tests.
type Scheduler struct {
	MasteryThreshold int
	Now              func() time.Time
}

// New creates a scheduler with the default settings
func New() *Scheduler {
	return &Scheduler{
		MasteryThreshold: DefaultMasteryThreshold,
		Now:              time.Now,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Update holds the review fields recomputed by NextReview. It is merged into
// the owning word by the caller (or via Apply); no other fields change.
type Update struct {
	EaseFactor     float64
	IntervalDays   int
	Repetition     int
	LastReviewedAt time.Time
	NextReviewAt   time.Time
	Status         models.WordStatus
}

// NextReview computes the next review state for a word after a pass/fail
// answer. It does not mutate the word.
//
// On an incorrect answer the repetition streak resets, the word comes back
// in one day and the ease factor drops by 0.2 (floored at MinEaseFactor).
// On a correct answer the streak grows, the ease factor gains 0.1 and the
// interval follows the SM-2 tiers: 1 day, then 6 days, then the previous
// interval scaled by the new ease factor.
func (s *Scheduler) NextReview(correct bool, w models.Word) Update {
	now := s.now()

	ease := w.EaseFactor
	if ease == 0 {
		// Word was saved before review state existed; use the creation default.
		ease = InitialEaseFactor
	}

	u := Update{
		LastReviewedAt: now,
		Status:         models.StatusReview,
	}

	if correct {
		u.Repetition = w.Repetition + 1
		u.EaseFactor = ease + correctBonus

		switch u.Repetition {
		case 1:
			u.IntervalDays = firstInterval
		case 2:
			u.IntervalDays = secondInterval
		default:
			u.IntervalDays = int(math.Round(float64(w.IntervalDays) * u.EaseFactor))
		}

		if u.Repetition >= s.MasteryThreshold {
			u.Status = models.StatusMastered
		}
	} else {
		u.Repetition = 0
		u.IntervalDays = 1
		u.EaseFactor = ease - lapsePenalty
		if u.EaseFactor < MinEaseFactor {
			u.EaseFactor = MinEaseFactor
		}
	}

	u.NextReviewAt = now.AddDate(0, 0, u.IntervalDays)
	return u
}

// Apply merges an update into a word
func Apply(w *models.Word, u Update) {
	last := u.LastReviewedAt
	next := u.NextReviewAt
	w.EaseFactor = u.EaseFactor
	w.IntervalDays = u.IntervalDays
	w.Repetition = u.Repetition
	w.LastReviewedAt = &last
	w.NextReviewAt = &next
	w.Status = u.Status
}

// DueForReview filters words down to those that should be shown now: words
// that have never been reviewed and words whose scheduled date has arrived
// or passed. Input order is preserved and the input is not mutated.
func (s *Scheduler) DueForReview(words []models.Word) []models.Word {
	now := s.now()

	var due []models.Word
	for _, w := range words {
		if w.NextReviewAt == nil || !w.NextReviewAt.After(now) {
			due = append(due, w)
		}
	}
	return due
}
