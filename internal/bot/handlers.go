package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/scanvocab/internal/embedding"
	"github.com/example/scanvocab/internal/excel"
	"github.com/example/scanvocab/internal/srs"
	"github.com/example/scanvocab/pkg/models"
)

const helpText = `Send me a photo of English text and I will extract the vocabulary for you.

Commands:
/project <name> - choose the project new words are saved into
/review - practice your due words
/due - how many words are waiting for review
/find <word> - related words from your vocabulary
/stats - your learning statistics
/export - download your words as a spreadsheet
/help - this message`

// handleUpdate routes one incoming Telegram update
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in update handler: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	user, err := b.upsertUser(message.From)
	if err != nil {
		log.Printf("Error upserting user %d: %v", message.From.ID, err)
		return
	}

	if len(message.Photo) > 0 {
		b.handlePhoto(user, message)
		return
	}

	if !message.IsCommand() {
		b.send(message.Chat.ID, "Send a photo of English text, or /help for commands.")
		return
	}

	switch message.Command() {
	case "start":
		b.send(message.Chat.ID, fmt.Sprintf("Hello, %s!\n\n%s", user.FirstName, helpText))
	case "help":
		b.send(message.Chat.ID, helpText)
	case "project":
		b.handleProject(user, message)
	case "review":
		b.handleReview(user, message.Chat.ID)
	case "due":
		b.handleDue(user, message.Chat.ID)
	case "find":
		b.handleFind(user, message)
	case "stats":
		b.handleStats(user, message.Chat.ID)
	case "export":
		b.handleExport(user, message.Chat.ID)
	default:
		b.send(message.Chat.ID, "Unknown command. Send /help for the list.")
	}
}

// handlePhoto downloads the scanned page, extracts vocabulary and saves the
// new words into the user's active project.
func (b *Bot) handlePhoto(user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if b.aiClient == nil {
		b.send(chatID, "Photo scanning is not available: no OpenAI key is configured.")
		return
	}

	b.send(chatID, "Reading your photo...")

	// Telegram sends several sizes; the last one is the largest
	photo := message.Photo[len(message.Photo)-1]
	imageData, err := b.downloadFile(photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo from user %d: %v", user.ID, err)
		b.send(chatID, "Could not download the photo, please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	extracted, err := b.aiClient.ExtractWords(ctx, imageData)
	if err != nil {
		log.Printf("Error extracting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not read the text on the photo, please try again.")
		return
	}
	if len(extracted) == 0 {
		b.send(chatID, "I could not find any vocabulary on that photo.")
		return
	}

	project, err := b.activeProject(user)
	if err != nil {
		log.Printf("Error resolving active project for user %d: %v", user.ID, err)
		b.send(chatID, "Something went wrong saving your words.")
		return
	}

	var saved []models.Word
	var skipped int
	for _, e := range extracted {
		if _, err := b.wordRepo.GetByEnglish(user.ID, project.ID, e.English); err == nil {
			skipped++
			continue
		}
		word := models.NewWord(user.ID, project.ID, e.English, e.Japanese)
		if err := b.wordRepo.Create(&word); err != nil {
			log.Printf("Error saving word %q for user %d: %v", e.English, user.ID, err)
			continue
		}
		saved = append(saved, word)
	}

	if len(saved) == 0 {
		b.send(chatID, fmt.Sprintf("All %d words from that photo are already in %q.", skipped, project.Name))
		return
	}

	reply := fmt.Sprintf("Saved %d new words to %q:\n\n%s", len(saved), project.Name, formatWordList(saved))
	if skipped > 0 {
		reply += fmt.Sprintf("\n(%d already known)", skipped)
	}
	b.send(chatID, reply)
}

// downloadFile fetches a file from the Telegram file API
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %v", err)
	}

	resp, err := http.Get(file.Link(b.token))
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status downloading file: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) handleProject(user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	name := strings.TrimSpace(message.CommandArguments())

	if name == "" {
		projects, err := b.projectRepo.GetByUser(user.ID)
		if err != nil {
			log.Printf("Error listing projects for user %d: %v", user.ID, err)
			b.send(chatID, "Could not list your projects.")
			return
		}
		if len(projects) == 0 {
			b.send(chatID, "You have no projects yet. Use /project <name> to create one.")
			return
		}
		var sb strings.Builder
		sb.WriteString("Your projects:\n")
		for _, p := range projects {
			marker := "  "
			if p.ID == user.ActiveProjectID {
				marker = "▸ "
			}
			sb.WriteString(marker + p.Name + "\n")
		}
		sb.WriteString("\nUse /project <name> to switch.")
		b.send(chatID, sb.String())
		return
	}

	project, err := b.projectRepo.GetOrCreate(user.ID, name)
	if err != nil {
		log.Printf("Error creating project %q for user %d: %v", name, user.ID, err)
		b.send(chatID, "Could not switch project.")
		return
	}
	if err := b.userRepo.SetActiveProject(user.ID, project.ID); err != nil {
		log.Printf("Error setting active project for user %d: %v", user.ID, err)
		b.send(chatID, "Could not switch project.")
		return
	}
	b.send(chatID, fmt.Sprintf("New scans will be saved to %q.", project.Name))
}

func (b *Bot) handleDue(user *models.User, chatID int64) {
	words, err := b.wordRepo.GetByUser(user.ID)
	if err != nil {
		log.Printf("Error getting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not check your words.")
		return
	}

	due := b.srs.DueForReview(words)
	if len(due) == 0 {
		b.send(chatID, "Nothing is due right now. Well done!")
		return
	}

	preview := due
	if len(preview) > 5 {
		preview = preview[:5]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d words are due for review:\n\n", len(due))
	for _, w := range preview {
		sb.WriteString("• " + w.English + "\n")
	}
	if len(due) > len(preview) {
		fmt.Fprintf(&sb, "...and %d more.\n", len(due)-len(preview))
	}
	sb.WriteString("\nSend /review to practice.")
	b.send(chatID, sb.String())
}

// handleReview starts a flashcard session over the user's due words
func (b *Bot) handleReview(user *models.User, chatID int64) {
	words, err := b.wordRepo.GetByUser(user.ID)
	if err != nil {
		log.Printf("Error getting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not start the review.")
		return
	}

	due := b.srs.DueForReview(words)
	if len(due) == 0 {
		b.send(chatID, "Nothing is due right now. Well done!")
		return
	}
	if len(due) > b.config.ReviewSessionSize {
		due = due[:b.config.ReviewSessionSize]
	}

	b.setSession(user.ID, &reviewSession{
		Words:     due,
		StartedAt: time.Now(),
	})
	b.sendCard(user.ID, chatID)
}

// sendCard shows the current card's front side
func (b *Bot) sendCard(userID, chatID int64) {
	s := b.session(userID)
	if s == nil {
		b.send(chatID, "The review session has expired. Send /review to start again.")
		return
	}

	word := s.Words[s.CurrentIdx]
	text := fmt.Sprintf("Card %d of %d\n\n%s", s.CurrentIdx+1, len(s.Words), word.English)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Show answer", "review:show"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Stop", "review:stop"),
		),
	)
	if err := b.sendWithKeyboard(chatID, text, keyboard); err != nil {
		log.Printf("Error sending card to user %d: %v", userID, err)
	}
}

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	// Answer the callback so the client stops the loading spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	switch query.Data {
	case "review:show":
		b.handleShowAnswer(userID, chatID)
	case "review:correct":
		b.handleAnswer(userID, chatID, true)
	case "review:wrong":
		b.handleAnswer(userID, chatID, false)
	case "review:stop":
		b.finishSession(userID, chatID)
	default:
		log.Printf("Unknown callback data: %s", query.Data)
	}
}

func (b *Bot) handleShowAnswer(userID, chatID int64) {
	s := b.session(userID)
	if s == nil {
		b.send(chatID, "The review session has expired. Send /review to start again.")
		return
	}
	s.Revealed = true

	word := s.Words[s.CurrentIdx]
	text := fmt.Sprintf("%s\n\n%s\n\nDid you remember it?", word.English, word.Japanese)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("I knew it", "review:correct"),
			tgbotapi.NewInlineKeyboardButtonData("Forgot", "review:wrong"),
		),
	)
	if err := b.sendWithKeyboard(chatID, text, keyboard); err != nil {
		log.Printf("Error sending answer to user %d: %v", userID, err)
	}
}

// handleAnswer grades the current card, persists the new review state and
// advances the session.
func (b *Bot) handleAnswer(userID, chatID int64, correct bool) {
	s := b.session(userID)
	if s == nil {
		b.send(chatID, "The review session has expired. Send /review to start again.")
		return
	}
	if !s.Revealed {
		// Grading buttons from an older card; ignore
		return
	}

	word := s.Words[s.CurrentIdx]
	update := b.srs.NextReview(correct, word)
	if err := b.wordRepo.UpdateReview(word.ID, update); err != nil {
		log.Printf("Error persisting review for word %d: %v", word.ID, err)
		b.send(chatID, "Could not save your answer, the card stays due.")
		return
	}
	srs.Apply(&s.Words[s.CurrentIdx], update)

	if correct {
		s.Correct++
	}
	s.Revealed = false
	s.CurrentIdx++

	if update.Status == models.StatusMastered {
		b.send(chatID, fmt.Sprintf("%q is mastered! Next review in %d days.", word.English, update.IntervalDays))
	}

	if s.CurrentIdx >= len(s.Words) {
		b.finishSession(userID, chatID)
		return
	}
	b.sendCard(userID, chatID)
}

// finishSession reports the result and records it as a quiz result
func (b *Bot) finishSession(userID, chatID int64) {
	s := b.session(userID)
	b.setSession(userID, nil)
	if s == nil {
		return
	}

	answered := s.CurrentIdx
	if answered == 0 {
		b.send(chatID, "Session stopped.")
		return
	}

	result := &models.QuizResult{
		UserID:   userID,
		Total:    answered,
		Correct:  s.Correct,
		Duration: int(time.Since(s.StartedAt).Seconds()),
		TakenAt:  s.StartedAt,
	}
	if len(s.Words) > 0 {
		result.ProjectID = s.Words[0].ProjectID
	}
	if err := b.quizRepo.Create(result); err != nil {
		log.Printf("Error saving quiz result for user %d: %v", userID, err)
	}

	b.send(chatID, fmt.Sprintf("Session finished: %d of %d correct.", s.Correct, answered))
}

// handleFind searches the user's vocabulary for words related to the query
func (b *Bot) handleFind(user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if b.store == nil {
		b.send(chatID, "Related word search is not available: no OpenAI key is configured.")
		return
	}

	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		b.send(chatID, "Usage: /find <word or phrase>")
		return
	}

	words, err := b.wordRepo.GetByUser(user.ID)
	if err != nil {
		log.Printf("Error getting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not search your words.")
		return
	}
	if len(words) == 0 {
		b.send(chatID, "You have no saved words yet.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	entries := make([]embedding.Entry, 0, len(words))
	for _, w := range words {
		entries = append(entries, embedding.Entry{
			English:  w.English,
			Japanese: w.Japanese,
			Status:   string(w.Status),
		})
	}
	b.store.Clear()
	if err := b.store.AddBatch(ctx, entries); err != nil {
		log.Printf("Error loading embedding store for user %d: %v", user.ID, err)
		b.send(chatID, "Could not search your words.")
		return
	}

	matches, err := b.store.SearchSimilar(ctx, query, b.config.RelatedWordsLimit)
	if err != nil {
		log.Printf("Error searching related words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not search your words.")
		return
	}
	if len(matches) == 0 {
		b.send(chatID, "No similar words found.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Words related to %q:\n\n", query)
	for _, m := range matches {
		fmt.Fprintf(&sb, "• %s — %s (%s, %.0f%%)\n", m.English, m.Japanese, m.Status, m.Similarity*100)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleStats(user *models.User, chatID int64) {
	stats, err := b.wordRepo.GetUserStatistics(user.ID, time.Now().UTC())
	if err != nil {
		log.Printf("Error getting statistics for user %d: %v", user.ID, err)
		b.send(chatID, "Could not load your statistics.")
		return
	}

	accuracy, err := b.quizRepo.GetAccuracy(user.ID)
	if err != nil {
		log.Printf("Error getting accuracy for user %d: %v", user.ID, err)
		accuracy = 0
	}

	var sb strings.Builder
	sb.WriteString("Your progress:\n\n")
	fmt.Fprintf(&sb, "Total words: %v\n", stats["total_words"])
	fmt.Fprintf(&sb, "Due now: %v\n", stats["due_now"])
	fmt.Fprintf(&sb, "Mastered: %v\n", stats["mastered"])
	fmt.Fprintf(&sb, "Review accuracy: %.0f%%\n", accuracy*100)

	results, err := b.quizRepo.GetRecentByUser(user.ID, 3)
	if err == nil && len(results) > 0 {
		sb.WriteString("\nRecent sessions:\n")
		for _, r := range results {
			fmt.Fprintf(&sb, "• %s: %d/%d\n", r.TakenAt.Format("Jan 2"), r.Correct, r.Total)
		}
	}

	b.send(chatID, sb.String())
}

// handleExport builds an xlsx of the user's words and sends it back
func (b *Bot) handleExport(user *models.User, chatID int64) {
	words, err := b.wordRepo.GetByUser(user.ID)
	if err != nil {
		log.Printf("Error getting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not export your words.")
		return
	}
	if len(words) == 0 {
		b.send(chatID, "You have no saved words yet.")
		return
	}

	projects, err := b.projectRepo.GetByUser(user.ID)
	if err != nil {
		log.Printf("Error getting projects for user %d: %v", user.ID, err)
		b.send(chatID, "Could not export your words.")
		return
	}
	projectNames := make(map[int64]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("scanvocab-%d.xlsx", user.ID))
	if err := excel.ExportWords(path, words, projectNames); err != nil {
		log.Printf("Error exporting words for user %d: %v", user.ID, err)
		b.send(chatID, "Could not export your words.")
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("%d words", len(words))
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending export to user %d: %v", user.ID, err)
		b.send(chatID, "Could not send the export file.")
	}
}
