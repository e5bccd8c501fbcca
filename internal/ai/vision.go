// Package ai extracts vocabulary from photographed text using the OpenAI
// vision API.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const extractionPrompt = `You are a vocabulary extractor for Japanese learners of English.
The user sends a photo of printed or handwritten English text. Extract the vocabulary
worth learning: skip trivial function words (the, a, is, of) and proper nouns.

For each word return:
- english: the dictionary form of the word
- japanese: a concise Japanese translation

Return ONLY a valid JSON array, no other text.

Example output: [{"english": "harbor", "japanese": "港"}, {"english": "vessel", "japanese": "船舶"}]`

const translationPrompt = `Translate the English word into Japanese. Return only the translation, no explanation.`

// ExtractedWord is one vocabulary entry recognized in an image
type ExtractedWord struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
}

// Client wraps the OpenAI API for image extraction and translation
type Client struct {
	client *openai.Client
	model  string
}

// New creates a new AI client. Model defaults to gpt-4o-mini when empty.
func New(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// ExtractWords recognizes the text in a photographed page and returns the
// vocabulary found in it.
func (c *Client) ExtractWords(ctx context.Context, imageData []byte) ([]ExtractedWord, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageURL,
						},
					},
				},
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var words []ExtractedWord
	if err := json.Unmarshal([]byte(content), &words); err != nil {
		return nil, fmt.Errorf("parsing extraction JSON: %w (response: %s)", err, content)
	}

	// Drop malformed entries rather than failing the whole scan.
	filtered := words[:0]
	for _, w := range words {
		w.English = strings.ToLower(strings.TrimSpace(w.English))
		w.Japanese = strings.TrimSpace(w.Japanese)
		if w.English != "" && w.Japanese != "" {
			filtered = append(filtered, w)
		}
	}

	return filtered, nil
}

// Translate returns the Japanese translation of a single English word
func (c *Client) Translate(ctx context.Context, english string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: translationPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: english,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
