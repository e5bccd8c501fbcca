// Package bot implements the Telegram surface of the vocabulary trainer:
// photo scans, flashcard review sessions, stats and reminders.
package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/scanvocab/internal/ai"
	"github.com/example/scanvocab/internal/database"
	"github.com/example/scanvocab/internal/embedding"
	"github.com/example/scanvocab/internal/scheduler"
	"github.com/example/scanvocab/internal/srs"
	"github.com/example/scanvocab/pkg/models"
)

// reviewSession is one user's ongoing flashcard run over their due words
type reviewSession struct {
	Words      []models.Word
	CurrentIdx int
	Correct    int
	Revealed   bool
	StartedAt  time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api   *tgbotapi.BotAPI
	token string

	srs      *srs.Scheduler
	aiClient *ai.Client
	store    *embedding.Store

	userRepo    *database.UserRepository
	wordRepo    *database.WordRepository
	projectRepo *database.ProjectRepository
	quizRepo    *database.QuizResultRepository

	schedulerEnabled bool
	scheduler        *scheduler.Scheduler

	mu       sync.Mutex
	sessions map[int64]*reviewSession

	config *BotConfig
}

// New creates a new bot instance
func New() (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	var aiClient *ai.Client
	var store *embedding.Store
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		var err error
		aiClient, err = ai.New(apiKey, os.Getenv("OPENAI_MODEL"))
		if err != nil {
			log.Printf("Warning: unable to initialize OpenAI client: %v", err)
		}

		embedder, err := embedding.NewOpenAIEmbedder(apiKey, os.Getenv("OPENAI_EMBEDDING_MODEL"))
		if err != nil {
			log.Printf("Warning: unable to initialize embedder: %v", err)
		} else {
			store = embedding.NewStore(embedder)
		}
	} else {
		log.Println("OPENAI_API_KEY is not set, photo scans and /find are disabled")
	}

	b := &Bot{
		token:            token,
		srs:              srs.New(),
		aiClient:         aiClient,
		store:            store,
		userRepo:         database.NewUserRepository(),
		wordRepo:         database.NewWordRepository(),
		projectRepo:      database.NewProjectRepository(),
		quizRepo:         database.NewQuizResultRepository(),
		schedulerEnabled: os.Getenv("ENABLE_SCHEDULER") != "false",
		sessions:         make(map[int64]*reviewSession),
		config:           DefaultConfig(),
	}

	return b, nil
}

// Store returns the embedding store shared with the MCP tool server, nil
// when no OpenAI key is configured.
func (b *Bot) Store() *embedding.Store {
	return b.store
}

// Start connects to Telegram and processes updates until the context is
// cancelled.
func (b *Bot) Start(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}
	b.api = api
	log.Printf("Authorized on account %s", api.Self.UserName)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b)
		b.scheduler.Start()
		log.Println("Reminder scheduler started")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop(ctx context.Context) error {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
	return nil
}

// SendDueReminder implements scheduler.Notifier
func (b *Bot) SendDueReminder(userID int64, dueCount int) error {
	text := fmt.Sprintf("You have %d words due for review. Send /review to practice.", dueCount)
	return b.send(userID, text)
}

// send delivers a plain text message to a chat
func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

// sendWithKeyboard delivers a message with an inline keyboard
func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

// session returns the user's active review session, dropping stale ones
func (b *Bot) session(userID int64) *reviewSession {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[userID]
	if !ok {
		return nil
	}
	if time.Since(s.StartedAt) > b.config.SessionTimeout {
		delete(b.sessions, userID)
		return nil
	}
	return s
}

func (b *Bot) setSession(userID int64, s *reviewSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == nil {
		delete(b.sessions, userID)
		return
	}
	b.sessions[userID] = s
}

// activeProject resolves the project new words are saved into, creating the
// default one on first use.
func (b *Bot) activeProject(user *models.User) (*models.Project, error) {
	if user.ActiveProjectID != 0 {
		project, err := b.projectRepo.GetByID(user.ActiveProjectID)
		if err == nil {
			return project, nil
		}
		log.Printf("Active project %d for user %d is gone: %v", user.ActiveProjectID, user.ID, err)
	}

	project, err := b.projectRepo.GetOrCreate(user.ID, "My words")
	if err != nil {
		return nil, err
	}
	if err := b.userRepo.SetActiveProject(user.ID, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}

// upsertUser records the Telegram identity of the message sender
func (b *Bot) upsertUser(from *tgbotapi.User) (*models.User, error) {
	user := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
	if err := b.userRepo.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

// formatWordList renders words as "english — japanese" lines
func formatWordList(words []models.Word) string {
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(fmt.Sprintf("• %s — %s\n", w.English, w.Japanese))
	}
	return sb.String()
}
