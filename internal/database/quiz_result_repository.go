package database

import (
	"fmt"

	"github.com/example/scanvocab/pkg/models"
)

// QuizResultRepository handles database operations for quiz results
type QuizResultRepository struct{}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository() *QuizResultRepository {
	return &QuizResultRepository{}
}

// Create inserts a new quiz result
func (r *QuizResultRepository) Create(result *models.QuizResult) error {
	if isPostgres() {
		query := `
			INSERT INTO quiz_results (user_id, project_id, total, correct, duration, taken_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`
		return DB.QueryRow(query,
			result.UserID, result.ProjectID, result.Total, result.Correct, result.Duration, result.TakenAt,
		).Scan(&result.ID, &result.CreatedAt)
	}

	res, err := DB.Exec(`
		INSERT INTO quiz_results (user_id, project_id, total, correct, duration, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.UserID, result.ProjectID, result.Total, result.Correct, result.Duration, result.TakenAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	result.ID = id
	return nil
}

// GetRecentByUser returns a user's most recent quiz results, newest first
func (r *QuizResultRepository) GetRecentByUser(userID int64, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := "SELECT * FROM quiz_results WHERE user_id = ? ORDER BY taken_at DESC LIMIT ?"
	err := DB.Select(&results, DB.Rebind(query), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %v", err)
	}
	return results, nil
}

// GetAccuracy returns a user's lifetime answer accuracy as a fraction
func (r *QuizResultRepository) GetAccuracy(userID int64) (float64, error) {
	var total, correct int
	query := "SELECT COALESCE(SUM(total), 0), COALESCE(SUM(correct), 0) FROM quiz_results WHERE user_id = ?"
	err := DB.QueryRow(DB.Rebind(query), userID).Scan(&total, &correct)
	if err != nil {
		return 0, fmt.Errorf("failed to get accuracy: %v", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(correct) / float64(total), nil
}
