package directory

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"beleads_backend/platform/logger"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestRetryingRetriesThenSucceeds(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
		calls++
		if calls < 3 {
			return Page{}, ErrUnavailable
		}
		return Page{Records: []Record{{ID: "a", Name: "A"}}}, nil
	})

	var delays []time.Duration
	r := NewRetrying(src, 3, 10*time.Millisecond, logger.Discard())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	page, err := r.Search(context.Background(), "q", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Records) != 1 || calls != 3 {
		t.Fatalf("expected success on third call, calls=%d", calls)
	}
	if diff := cmp.Diff([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays); diff != "" {
		t.Fatalf("back-off mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryingStopsOnPermanentError(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
		calls++
		return Page{}, Permanent(errors.New("bad request"))
	})
	r := NewRetrying(src, 5, time.Millisecond, logger.Discard())
	r.sleep = func(context.Context, time.Duration) error { return nil }

	if _, err := r.Search(context.Background(), "q", 10, ""); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, calls=%d", calls)
	}
}

func TestRetryingGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
		calls++
		return Page{}, ErrUnavailable
	})
	r := NewRetrying(src, 3, time.Millisecond, logger.Discard())
	r.sleep = func(context.Context, time.Duration) error { return nil }

	_, err := r.Search(context.Background(), "q", 10, "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected wrapped ErrUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRateLimitedHonoursContext(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
		return Page{}, nil
	})
	r := NewRateLimited(src, 0.001, 1)

	if _, err := r.Search(context.Background(), "q", 1, ""); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Search(ctx, "q", 1, ""); err == nil {
		t.Fatal("expected wait to fail on a cancelled context")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(context.Canceled) {
		t.Fatal("cancellation is final")
	}
	if IsRetryable(Permanent(errors.New("x"))) {
		t.Fatal("permanent is final")
	}
	if !IsRetryable(ErrUnavailable) {
		t.Fatal("unavailable is retryable")
	}
}

func TestParsePage(t *testing.T) {
	raw := "```json\n" + `{"results":[
		{"id":"p1","name":"<b>Padaria</b>  Central","address":"Rua A, Campinas, SP","phone":"unknown","rating":4.5},
		{"id":"","name":"Sem Id","address":"Rua B, Santos, SP"},
		{"id":"p3","name":"","address":"ignored"},
		{"id":"p4","name":"Extra","address":"Rua D"}
	],"hasMore":true}` + "\n```"

	page, err := ParsePage(raw, 3, 2)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(page.Records) != 2 {
		t.Fatalf("expected 2 records after cap and name filter, got %d", len(page.Records))
	}
	if page.Records[0].ID != "p1" || page.Records[0].Name != "Padaria Central" {
		t.Fatalf("unexpected first record %+v", page.Records[0])
	}
	if !strings.HasPrefix(page.Records[1].ID, "llm:") {
		t.Fatalf("expected derived id, got %q", page.Records[1].ID)
	}
	if page.NextCursor != "3" {
		t.Fatalf("expected next cursor 3, got %q", page.NextCursor)
	}

	again, _ := ParsePage(raw, 3, 2)
	if again.Records[1].ID != page.Records[1].ID {
		t.Fatal("derived ids must be stable")
	}
}

func TestParsePageLastPage(t *testing.T) {
	page, err := ParsePage(`{"results":[{"id":"x","name":"X"}],"hasMore":false}`, 10, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected no cursor, got %q", page.NextCursor)
	}
	if _, err := ParsePage("not json", 10, 1); err == nil {
		t.Fatal("expected decode error")
	}
}

type fakeLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeLLM) Name() string { return "fake-directory" }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		f.mu.Lock()
		for _, c := range req.Contents {
			for _, p := range c.Parts {
				if p != nil && p.Text != "" {
					f.prompts = append(f.prompts, p.Text)
				}
			}
		}
		answer, err := f.answer, f.err
		f.mu.Unlock()

		if err != nil {
			yield(nil, err)
			return
		}
		yield(&model.LLMResponse{Content: genai.NewContentFromText(answer, genai.RoleModel)}, nil)
	}
}

func TestLLMSourceSearch(t *testing.T) {
	llm := &fakeLLM{answer: `{"results":[{"id":"p1","name":"Padaria","address":"Campinas, SP"}],"hasMore":true}`}
	src, err := NewLLMSource(llm)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	page, err := src.Search(context.Background(), "Padarias em Campinas, SP", 20, "2")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Records) != 1 || page.NextCursor != "3" {
		t.Fatalf("unexpected page %+v", page)
	}

	found := false
	for _, p := range llm.prompts {
		if strings.Contains(p, "Padarias em Campinas, SP") && strings.Contains(p, "Page: 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("prompt did not carry query and page: %v", llm.prompts)
	}
}

func TestLLMSourceWrapsModelFailure(t *testing.T) {
	src, err := NewLLMSource(&fakeLLM{err: errors.New("quota exhausted")})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := src.Search(context.Background(), "q", 10, ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLLMSourceRejectsBadCursor(t *testing.T) {
	src, err := NewLLMSource(&fakeLLM{answer: "{}"})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	_, err = src.Search(context.Background(), "q", 10, "abc")
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected permanent cursor error, got %v", err)
	}
}
