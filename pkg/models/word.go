package models

import "time"

// WordStatus is the learning state of a word as shown to the user.
type WordStatus string

const (
	// StatusNew marks a word that has never been reviewed
	StatusNew WordStatus = "new"
	// StatusReview marks a word that is in the review cycle
	StatusReview WordStatus = "review"
	// StatusMastered marks a word with a well-established memory
	StatusMastered WordStatus = "mastered"
)

// Word represents a vocabulary entry extracted from a scanned image,
// together with its spaced-repetition state.
type Word struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ProjectID int64  `json:"project_id" db:"project_id"`
	English   string `json:"english" db:"english"`
	Japanese  string `json:"japanese" db:"japanese"`

	Status         WordStatus `json:"status" db:"status"`
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`     // interval growth multiplier, floored at 1.3
	IntervalDays   int        `json:"interval_days" db:"interval_days"` // days until the next scheduled review
	Repetition     int        `json:"repetition" db:"repetition"`       // consecutive correct answers since the last lapse
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at" db:"next_review_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewWord returns a word with the default review state for a freshly saved entry.
func NewWord(userID, projectID int64, english, japanese string) Word {
	return Word{
		UserID:     userID,
		ProjectID:  projectID,
		English:    english,
		Japanese:   japanese,
		Status:     StatusNew,
		EaseFactor: 2.5,
	}
}
