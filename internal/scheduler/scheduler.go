package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/scanvocab/internal/database"
)

// Default window within which review reminders may be sent
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier interface for sending notifications
type Notifier interface {
	SendDueReminder(userID int64, dueCount int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly check for users whose notification hour has arrived
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)

	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// hourFromEnv reads an hour override from the environment, falling back to
// the default for unset or out-of-range values.
func hourFromEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return fallback
	}
	return h
}

// checkAndSendReminders notifies users who have words due for review
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	userRepo := database.NewUserRepository()
	wordRepo := database.NewWordRepository()

	users, err := userRepo.GetUsersForNotification(currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		count, err := wordRepo.CountDueForUser(user.ID, time.Now().UTC())
		if err != nil {
			log.Printf("Error counting due words for user %d: %v", user.ID, err)
			continue
		}

		if count == 0 {
			continue
		}

		// Cap the reminder at the user's daily preference
		if user.WordsPerDay > 0 && count > user.WordsPerDay {
			count = user.WordsPerDay
		}

		if err := s.notifier.SendDueReminder(user.ID, count); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a due-word reminder for a specific user
func (s *Scheduler) RunManualCheck(userID int64) error {
	wordRepo := database.NewWordRepository()

	count, err := wordRepo.CountDueForUser(userID, time.Now().UTC())
	if err != nil {
		return err
	}

	if count > 0 {
		return s.notifier.SendDueReminder(userID, count)
	}
	return nil
}
