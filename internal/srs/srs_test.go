package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/scanvocab/pkg/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestScheduler(now time.Time) *Scheduler {
	s := New()
	s.Now = fixedClock(now)
	return s
}

func TestNextReviewFirstCorrectAnswers(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")

	// First correct answer: fixed one-day interval.
	u := s.NextReview(true, w)
	assert.InDelta(t, 2.6, u.EaseFactor, 1e-9)
	assert.Equal(t, 1, u.IntervalDays)
	assert.Equal(t, 1, u.Repetition)
	assert.Equal(t, models.StatusReview, u.Status)
	assert.Equal(t, now, u.LastReviewedAt)
	assert.Equal(t, now.AddDate(0, 0, 1), u.NextReviewAt)
	Apply(&w, u)

	// Second correct answer: fixed six-day interval.
	u = s.NextReview(true, w)
	assert.InDelta(t, 2.7, u.EaseFactor, 1e-9)
	assert.Equal(t, 6, u.IntervalDays)
	assert.Equal(t, 2, u.Repetition)
	assert.Equal(t, models.StatusReview, u.Status)
	Apply(&w, u)

	// Third correct answer: previous interval scaled by the new ease factor.
	u = s.NextReview(true, w)
	assert.InDelta(t, 2.8, u.EaseFactor, 1e-9)
	assert.Equal(t, 17, u.IntervalDays) // round(6 * 2.8)
	assert.Equal(t, 3, u.Repetition)
	assert.Equal(t, models.StatusReview, u.Status)
	assert.Equal(t, now.AddDate(0, 0, 17), u.NextReviewAt)
}

func TestNextReviewLapse(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")
	w.EaseFactor = 2.0
	w.IntervalDays = 14
	w.Repetition = 4

	u := s.NextReview(false, w)
	assert.InDelta(t, 1.8, u.EaseFactor, 1e-9)
	assert.Equal(t, 1, u.IntervalDays)
	assert.Equal(t, 0, u.Repetition)
	assert.Equal(t, models.StatusReview, u.Status)
	assert.Equal(t, now.AddDate(0, 0, 1), u.NextReviewAt)
}

func TestNextReviewEaseFactorFloor(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	// A word already at the floor must not sink below it: 1.3 - 0.2 would be 1.1.
	w := models.NewWord(1, 1, "harbor", "港")
	w.EaseFactor = 1.3
	w.IntervalDays = 10
	w.Repetition = 5

	u := s.NextReview(false, w)
	assert.InDelta(t, 1.3, u.EaseFactor, 1e-9)
	assert.Equal(t, 1, u.IntervalDays)
	assert.Equal(t, 0, u.Repetition)

	// Repeated lapses never push the ease factor below the floor.
	for i := 0; i < 20; i++ {
		Apply(&w, u)
		u = s.NextReview(false, w)
		assert.GreaterOrEqual(t, u.EaseFactor, 1.3)
	}
}

func TestNextReviewMasteryThreshold(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	tests := []struct {
		name       string
		repetition int
		correct    bool
		want       models.WordStatus
	}{
		{"seventh correct stays in review", 6, true, models.StatusReview},
		{"eighth correct masters", 7, true, models.StatusMastered},
		{"beyond threshold stays mastered", 11, true, models.StatusMastered},
		{"lapse at high streak demotes", 11, false, models.StatusReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := models.NewWord(1, 1, "harbor", "港")
			w.EaseFactor = 2.0
			w.IntervalDays = 30
			w.Repetition = tt.repetition

			u := s.NextReview(tt.correct, w)
			assert.Equal(t, tt.want, u.Status)
		})
	}
}

func TestNextReviewDefaultsMissingEaseFactor(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	// Zero ease factor is treated as the creation default 2.5.
	w := models.Word{English: "harbor", Japanese: "港"}

	u := s.NextReview(true, w)
	assert.InDelta(t, 2.6, u.EaseFactor, 1e-9)
	assert.Equal(t, 1, u.IntervalDays)
	assert.Equal(t, 1, u.Repetition)

	u = s.NextReview(false, w)
	assert.InDelta(t, 2.3, u.EaseFactor, 1e-9)
}

func TestNextReviewDeterministicAtFixedInstant(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")
	w.EaseFactor = 2.2
	w.IntervalDays = 9
	w.Repetition = 3

	first := s.NextReview(true, w)
	second := s.NextReview(true, w)
	assert.Equal(t, first, second)

	// A later clock shifts only the timestamps, never the scalar state.
	later := newTestScheduler(now.Add(37 * time.Hour))
	third := later.NextReview(true, w)
	assert.Equal(t, first.EaseFactor, third.EaseFactor)
	assert.Equal(t, first.IntervalDays, third.IntervalDays)
	assert.Equal(t, first.Repetition, third.Repetition)
	assert.Equal(t, first.Status, third.Status)
	assert.NotEqual(t, first.LastReviewedAt, third.LastReviewedAt)
	assert.NotEqual(t, first.NextReviewAt, third.NextReviewAt)
}

func TestNextReviewDoesNotMutateInput(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")
	w.IntervalDays = 6
	w.Repetition = 2
	before := w

	s.NextReview(true, w)
	s.NextReview(false, w)
	assert.Equal(t, before, w)
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")
	u := s.NextReview(true, w)
	Apply(&w, u)

	assert.Equal(t, u.EaseFactor, w.EaseFactor)
	assert.Equal(t, u.IntervalDays, w.IntervalDays)
	assert.Equal(t, u.Repetition, w.Repetition)
	assert.Equal(t, u.Status, w.Status)
	require.NotNil(t, w.LastReviewedAt)
	require.NotNil(t, w.NextReviewAt)
	assert.Equal(t, u.LastReviewedAt, *w.LastReviewedAt)
	assert.Equal(t, u.NextReviewAt, *w.NextReviewAt)
}

func TestDueForReview(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	never := models.NewWord(1, 1, "never", "未")
	overdue := models.NewWord(1, 1, "overdue", "遅")
	overdue.NextReviewAt = &yesterday
	exact := models.NewWord(1, 1, "exact", "丁")
	exact.NextReviewAt = &now
	future := models.NewWord(1, 1, "future", "先")
	future.NextReviewAt = &tomorrow

	due := s.DueForReview([]models.Word{never, overdue, future, exact})

	require.Len(t, due, 3)
	// Input order is preserved for the retained words.
	assert.Equal(t, "never", due[0].English)
	assert.Equal(t, "overdue", due[1].English)
	assert.Equal(t, "exact", due[2].English)
}

func TestDueForReviewEmpty(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	assert.Empty(t, s.DueForReview(nil))

	tomorrow := now.AddDate(0, 0, 1)
	future := models.NewWord(1, 1, "future", "先")
	future.NextReviewAt = &tomorrow
	assert.Empty(t, s.DueForReview([]models.Word{future}))
}

// A full learning trajectory: three correct answers, a lapse, then the climb
// back through the fixed tiers.
func TestReviewTrajectory(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(now)

	w := models.NewWord(1, 1, "harbor", "港")

	intervals := []int{}
	for _, correct := range []bool{true, true, true, false, true, true} {
		u := s.NextReview(correct, w)
		Apply(&w, u)
		intervals = append(intervals, u.IntervalDays)
	}

	// 1, 6, round(6*2.8)=17, lapse to 1, then the tiers restart.
	assert.Equal(t, []int{1, 6, 17, 1, 1, 6}, intervals)
	assert.InDelta(t, 2.8, w.EaseFactor, 1e-9) // 2.5 +0.1*3 -0.2 +0.1*2
	assert.Equal(t, 2, w.Repetition)
}
