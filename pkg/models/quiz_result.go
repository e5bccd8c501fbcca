package models

import "time"

// QuizResult records the outcome of one flashcard review session
type QuizResult struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ProjectID int64     `json:"project_id" db:"project_id"`
	Total     int       `json:"total" db:"total"`     // cards shown in the session
	Correct   int       `json:"correct" db:"correct"` // cards graded as known
	Duration  int       `json:"duration" db:"duration"` // duration in seconds
	TakenAt   time.Time `json:"taken_at" db:"taken_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
