package query

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	delay  time.Duration
	gotCtx context.Context
	text   string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.gotCtx = ctx
	m.text = text
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.EmbeddingResult{}, ctx.Err()
		}
	}
	return m.result, m.err
}

func mustIdentity(t *testing.T, subject string) domain.Identity {
	t.Helper()
	id, err := domain.NewIdentity(subject)
	if err != nil {
		t.Fatalf("NewIdentity(%q) error = %v", subject, err)
	}
	return id
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"How To Deploy", "how to deploy"},
		{"  spaced\t\tout  \n query ", "spaced out query"},
		{"already normal", "already normal"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "drops stop words and punctuation",
			in:   "how to deploy the service?",
			want: []string{"deploy", "service"},
		},
		{
			name: "stems plurals and gerunds",
			in:   "deployments failing queries",
			want: []string{"deployment", "fail", "query"},
		},
		{
			name: "all stop words keeps tokens",
			in:   "the and of",
			want: []string{"the", "and", "of"},
		},
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrepareHappyPath(t *testing.T) {
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	p := NewProcessor(embed, 80*time.Millisecond)

	q, err := p.Prepare(context.Background(), "How to Deploy", mustIdentity(t, "alice"),
		filter.Filters{}, 5)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if q.Normalized() != "how to deploy" {
		t.Errorf("Normalized = %q", q.Normalized())
	}
	if embed.text != "how to deploy" {
		t.Errorf("embedded text = %q, want normalized form", embed.text)
	}
	if q.SemanticUnavailable() {
		t.Error("SemanticUnavailable = true, want false")
	}
	if len(q.Embedding()) != 2 {
		t.Errorf("Embedding length = %d, want 2", len(q.Embedding()))
	}
	if want := []string{"deploy"}; !reflect.DeepEqual(q.Tokens(), want) {
		t.Errorf("Tokens = %v, want %v", q.Tokens(), want)
	}
}

func TestPrepareEmbedderErrorDegrades(t *testing.T) {
	embed := &mockEmbedder{err: errors.New("provider down")}
	p := NewProcessor(embed, 80*time.Millisecond)

	q, err := p.Prepare(context.Background(), "deploy guide", mustIdentity(t, "alice"),
		filter.Filters{}, 5)
	if err != nil {
		t.Fatalf("Prepare() error = %v, want degradation instead", err)
	}
	if !q.SemanticUnavailable() {
		t.Error("SemanticUnavailable = false, want true")
	}
	if q.Embedding() != nil {
		t.Errorf("Embedding = %v, want nil", q.Embedding())
	}
}

func TestPrepareEmbedderTimeoutDegrades(t *testing.T) {
	embed := &mockEmbedder{
		delay:  200 * time.Millisecond,
		result: domain.EmbeddingResult{Embedding: []float32{0.1}},
	}
	p := NewProcessor(embed, 10*time.Millisecond)

	start := time.Now()
	q, err := p.Prepare(context.Background(), "deploy guide", mustIdentity(t, "alice"),
		filter.Filters{}, 5)
	if err != nil {
		t.Fatalf("Prepare() error = %v, want degradation instead", err)
	}
	if !q.SemanticUnavailable() {
		t.Error("SemanticUnavailable = false, want true")
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("Prepare took %v, expected the embed timeout to cut it short", elapsed)
	}
}

func TestClassifyEmbedError(t *testing.T) {
	timeoutErr := classifyEmbedError(context.DeadlineExceeded)
	if !errors.Is(timeoutErr, domain.ErrEmbeddingTimeout) {
		t.Errorf("classifyEmbedError(DeadlineExceeded) = %v, want ErrEmbeddingTimeout", timeoutErr)
	}
	if !errors.Is(timeoutErr, context.DeadlineExceeded) {
		t.Errorf("classifyEmbedError(DeadlineExceeded) = %v, want the cause preserved", timeoutErr)
	}

	providerErr := errors.New("provider down")
	if got := classifyEmbedError(providerErr); !errors.Is(got, providerErr) {
		t.Errorf("classifyEmbedError(%v) = %v, want passthrough", providerErr, got)
	}
	if errors.Is(classifyEmbedError(providerErr), domain.ErrEmbeddingTimeout) {
		t.Error("provider failure classified as a timeout")
	}
}

func TestPrepareEmptyQuery(t *testing.T) {
	p := NewProcessor(&mockEmbedder{}, 80*time.Millisecond)

	_, err := p.Prepare(context.Background(), "   ", mustIdentity(t, "alice"),
		filter.Filters{}, 5)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("Prepare() error = %v, want ErrInvalidQuery", err)
	}
}
