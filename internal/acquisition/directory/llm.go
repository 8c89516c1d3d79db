package directory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"beleads_backend/platform/sanitize"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const llmAppName = "lead-directory"

// LLMSource looks businesses up through a generative model. The cursor is the
// 1-based page number as a decimal string.
type LLMSource struct {
	runner         *runner.Runner
	sessionService session.Service
}

// NewLLMSource builds an agent around llm that answers directory queries in JSON.
func NewLLMSource(llm model.LLM) (*LLMSource, error) {
	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "LeadDirectory",
		Model:       llm,
		Description: "Lists real local businesses matching a search query as JSON.",
		Instruction: directorySystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create directory agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        llmAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create directory runner: %w", err)
	}

	return &LLMSource{runner: r, sessionService: sessionService}, nil
}

var _ Source = (*LLMSource)(nil)

func (s *LLMSource) Search(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
	page, err := parseCursor(cursor)
	if err != nil {
		return Page{}, Permanent(err)
	}

	sessionID := uuid.NewString()
	userID := "directory-" + sessionID
	if _, err := s.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   llmAppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return Page{}, fmt.Errorf("directory: create session: %w", err)
	}
	defer func() {
		_ = s.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   llmAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	msg := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildDirectoryPrompt(query, pageSize, page)}},
	}

	var out strings.Builder
	for event, err := range s.runner.Run(ctx, userID, sessionID, msg, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			if ctx.Err() != nil {
				return Page{}, ctx.Err()
			}
			return Page{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if event == nil || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part != nil {
				out.WriteString(part.Text)
			}
		}
	}

	result, err := ParsePage(out.String(), pageSize, page)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, nil
}

type llmPage struct {
	Results []Record `json:"results"`
	HasMore bool     `json:"hasMore"`
}

// ParsePage decodes a model answer into a Page. Markdown fences around the
// JSON are tolerated. Records beyond pageSize are dropped and records without
// an id get one derived from name and address.
func ParsePage(raw string, pageSize, page int) (Page, error) {
	text := stripFences(raw)
	if text == "" {
		return Page{}, fmt.Errorf("empty directory answer")
	}

	var parsed llmPage
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Page{}, fmt.Errorf("decode directory answer: %w", err)
	}

	records := parsed.Results
	if pageSize > 0 && len(records) > pageSize {
		records = records[:pageSize]
	}
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		rec.Name = sanitize.Line(rec.Name)
		rec.Category = sanitize.Line(rec.Category)
		rec.Address = sanitize.Line(rec.Address)
		if rec.Name == "" {
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = derivedID(rec)
		}
		kept = append(kept, rec)
	}

	result := Page{Records: kept}
	if parsed.HasMore && len(kept) > 0 {
		result.NextCursor = strconv.Itoa(page + 1)
	}
	return result, nil
}

func parseCursor(cursor string) (int, error) {
	if strings.TrimSpace(cursor) == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(cursor)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid directory cursor %q", cursor)
	}
	return page, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func derivedID(rec Record) string {
	key := strings.ToLower(strings.TrimSpace(rec.Name)) + "|" + strings.ToLower(strings.TrimSpace(rec.Address))
	sum := sha1.Sum([]byte(key))
	return "llm:" + hex.EncodeToString(sum[:])
}

func buildDirectoryPrompt(query string, pageSize, page int) string {
	return fmt.Sprintf(`Search query: %s
Page: %d
Page size: %d

Task:
List real businesses matching the query. Page %d means skip the first %d results of a stable ordering.
Rules:
- Answer with a single JSON object and nothing else.
- Shape: {"results":[{"id":"","name":"","category":"","address":"","phone":"","website":"","rating":0,"reviewCount":0,"mapLink":""}],"hasMore":true}
- "id" is a stable identifier such as a maps place id. Never invent one; leave it empty if unknown.
- "address" must include city and state code.
- Use "unknown" for a missing phone. Use 0 for missing rating or review count.
- Return at most %d results. Set "hasMore" to false when no further results exist.
`, query, page, pageSize, page, (page-1)*pageSize, pageSize)
}

const directorySystemPrompt = "You are a business directory. You return accurate listings of local businesses as strict JSON and never add commentary."
