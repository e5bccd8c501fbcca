package database

import (
	"fmt"
	"time"

	"github.com/example/scanvocab/internal/srs"
	"github.com/example/scanvocab/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(id int64) (*models.Word, error) {
	var word models.Word
	err := DB.Get(&word, DB.Rebind("SELECT * FROM words WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %v", err)
	}
	return &word, nil
}

// GetByUser returns all words belonging to a user
func (r *WordRepository) GetByUser(userID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.Select(&words, DB.Rebind("SELECT * FROM words WHERE user_id = ? ORDER BY id"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by user: %v", err)
	}
	return words, nil
}

// GetByProject returns all words in a project
func (r *WordRepository) GetByProject(projectID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.Select(&words, DB.Rebind("SELECT * FROM words WHERE project_id = ? ORDER BY id"), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by project: %v", err)
	}
	return words, nil
}

// GetByEnglish returns a user's word by its English form within a project
func (r *WordRepository) GetByEnglish(userID, projectID int64, english string) (*models.Word, error) {
	var word models.Word
	err := DB.Get(&word, DB.Rebind(
		"SELECT * FROM words WHERE user_id = ? AND project_id = ? AND english = ?"),
		userID, projectID, english)
	if err != nil {
		return nil, err
	}
	return &word, nil
}

// GetDueForUser returns words due for review for a user, earliest first.
// Never-reviewed words (next_review_at IS NULL) are always due. This is the
// SQL form of the srs due predicate, used by the reminder path.
func (r *WordRepository) GetDueForUser(userID int64, now time.Time) ([]models.Word, error) {
	var words []models.Word
	query := `
		SELECT * FROM words
		WHERE user_id = ? AND (next_review_at IS NULL OR next_review_at <= ?)
		ORDER BY next_review_at IS NOT NULL, next_review_at ASC
	`
	err := DB.Select(&words, DB.Rebind(query), userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due words: %v", err)
	}
	return words, nil
}

// CountDueForUser returns the number of words due for review for a user
func (r *WordRepository) CountDueForUser(userID int64, now time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM words WHERE user_id = ? AND (next_review_at IS NULL OR next_review_at <= ?)"
	err := DB.Get(&count, DB.Rebind(query), userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due words: %v", err)
	}
	return count, nil
}

// Create inserts a new word
func (r *WordRepository) Create(word *models.Word) error {
	if isPostgres() {
		query := `
			INSERT INTO words (user_id, project_id, english, japanese, status, ease_factor, interval_days, repetition)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRow(
			query,
			word.UserID,
			word.ProjectID,
			word.English,
			word.Japanese,
			word.Status,
			word.EaseFactor,
			word.IntervalDays,
			word.Repetition,
		).Scan(&word.ID, &word.CreatedAt, &word.UpdatedAt)
	}

	// SQLite has no RETURNING
	result, err := DB.Exec(`
		INSERT INTO words (user_id, project_id, english, japanese, status, ease_factor, interval_days, repetition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		word.UserID,
		word.ProjectID,
		word.English,
		word.Japanese,
		word.Status,
		word.EaseFactor,
		word.IntervalDays,
		word.Repetition,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	word.ID = id

	return DB.QueryRow("SELECT created_at, updated_at FROM words WHERE id = ?", word.ID).
		Scan(&word.CreatedAt, &word.UpdatedAt)
}

// Update modifies an existing word's entry fields
func (r *WordRepository) Update(word *models.Word) error {
	query := `
		UPDATE words SET
			english = ?,
			japanese = ?,
			project_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := DB.Exec(DB.Rebind(query), word.English, word.Japanese, word.ProjectID, word.ID)
	if err != nil {
		return fmt.Errorf("failed to update word: %v", err)
	}
	return nil
}

// UpdateReview persists the output of a review-state computation for a word.
// Exactly the fields produced by the scheduler are written.
func (r *WordRepository) UpdateReview(wordID int64, u srs.Update) error {
	query := `
		UPDATE words SET
			ease_factor = ?,
			interval_days = ?,
			repetition = ?,
			last_reviewed_at = ?,
			next_review_at = ?,
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := DB.Exec(DB.Rebind(query),
		u.EaseFactor,
		u.IntervalDays,
		u.Repetition,
		u.LastReviewedAt,
		u.NextReviewAt,
		u.Status,
		wordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review state: %v", err)
	}
	return nil
}

// Delete removes a word
func (r *WordRepository) Delete(id int64) error {
	_, err := DB.Exec(DB.Rebind("DELETE FROM words WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

// Search finds a user's words by pattern matching on either language
func (r *WordRepository) Search(userID int64, query string) ([]models.Word, error) {
	var words []models.Word
	pattern := "%" + query + "%"
	sqlQuery := `
		SELECT * FROM words
		WHERE user_id = ? AND (LOWER(english) LIKE LOWER(?) OR japanese LIKE ?)
		ORDER BY english
	`
	err := DB.Select(&words, DB.Rebind(sqlQuery), userID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search words: %v", err)
	}
	return words, nil
}

// GetUserStatistics returns aggregate counts for a user's vocabulary
func (r *WordRepository) GetUserStatistics(userID int64, now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	err := DB.Get(&total, DB.Rebind("SELECT COUNT(*) FROM words WHERE user_id = ?"), userID)
	if err != nil {
		return nil, err
	}
	stats["total_words"] = total

	due, err := r.CountDueForUser(userID, now)
	if err != nil {
		return nil, err
	}
	stats["due_now"] = due

	var mastered int
	err = DB.Get(&mastered, DB.Rebind(
		"SELECT COUNT(*) FROM words WHERE user_id = ? AND status = 'mastered'"), userID)
	if err != nil {
		return nil, err
	}
	stats["mastered"] = mastered

	var avgEF float64
	err = DB.Get(&avgEF, DB.Rebind(
		"SELECT COALESCE(AVG(ease_factor), 2.5) FROM words WHERE user_id = ?"), userID)
	if err != nil {
		return nil, err
	}
	stats["avg_ease_factor"] = avgEF

	return stats, nil
}
