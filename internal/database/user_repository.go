package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/scanvocab/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by Telegram ID
func (r *UserRepository) GetByID(telegramID int64) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, DB.Rebind("SELECT * FROM users WHERE telegram_id = ?"), telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// Upsert creates a user on first contact or refreshes the Telegram identity
// fields on subsequent ones. Settings are preserved on update.
func (r *UserRepository) Upsert(user *models.User) error {
	var existing models.User
	err := DB.Get(&existing, DB.Rebind("SELECT * FROM users WHERE telegram_id = ?"), user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		if user.WordsPerDay == 0 {
			user.WordsPerDay = 20
		}
		if user.NotificationHour == 0 {
			user.NotificationHour = 9
		}
		user.NotificationEnabled = true

		_, err = DB.Exec(DB.Rebind(`
			INSERT INTO users (telegram_id, username, first_name, notification_enabled, notification_hour, words_per_day)
			VALUES (?, ?, ?, ?, ?, ?)
		`), user.ID, user.Username, user.FirstName, user.NotificationEnabled, user.NotificationHour, user.WordsPerDay)
		if err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %v", err)
	}

	_, err = DB.Exec(DB.Rebind(`
		UPDATE users SET username = ?, first_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE telegram_id = ?
	`), user.Username, user.FirstName, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}

	user.ActiveProjectID = existing.ActiveProjectID
	user.NotificationEnabled = existing.NotificationEnabled
	user.NotificationHour = existing.NotificationHour
	user.WordsPerDay = existing.WordsPerDay
	return nil
}

// SetActiveProject records which project new scans are saved into
func (r *UserRepository) SetActiveProject(telegramID, projectID int64) error {
	_, err := DB.Exec(DB.Rebind(`
		UPDATE users SET active_project_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE telegram_id = ?
	`), projectID, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set active project: %v", err)
	}
	return nil
}

// GetUsersForNotification returns users with reminders enabled for the given hour
func (r *UserRepository) GetUsersForNotification(hour int) ([]models.User, error) {
	var users []models.User
	query := "SELECT * FROM users WHERE notification_enabled = ? AND notification_hour = ?"
	err := DB.Select(&users, DB.Rebind(query), true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}
