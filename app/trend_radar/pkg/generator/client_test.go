package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	dm "github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search"
)

type fakeChatModel struct {
	content string
	err     error
	calls   int
	input   []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Response), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const groundedReply = `## 1. Agentic commerce
**Summary:** Marketplaces let AI agents check out on behalf of buyers.
**Impact:** Sellers must expose structured catalogs.
**Takeaway:** Clean up product feeds now.
**Sources:** [2]

## 2. De minimis changes
**Summary:** Low-value parcel exemptions are being removed.
**Impact:** Direct-to-consumer shipping costs rise.
**Takeaway:** Move inventory to overseas warehouses.
**Sources:** [1], [2]
`

func TestGenerateWithGrounding(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("Search", mock.Anything, mock.MatchedBy(func(r *search.Request) bool {
		return r.Language == "en" && r.Topic == "news" && r.IncludeRawContent &&
			r.StartDate == "2026-10-12" && r.EndDate == "2026-10-19"
	})).Return(&search.Response{Results: []search.Result{
		{Title: "Customs update", URL: "https://customs.example/1", Content: "short", RawContent: strings.Repeat("tariff ", 60), PublishedDate: "2026-10-17"},
		{Title: "", URL: "https://skipped.example"},
		{Title: "Retail Dive", URL: "https://retaildive.example/2", Content: "short"},
	}}, nil)

	var (
		mu      sync.Mutex
		fetched []string
	)
	cm := &fakeChatModel{content: groundedReply}
	c := NewClient(cm,
		WithSearcher(searcher),
		WithClock(clock),
		WithFetcher(func(ctx context.Context, url string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			fetched = append(fetched, url)
			return "full article body about agentic checkout " + strings.Repeat("x", 400), nil
		}),
	)

	report, err := c.Generate(context.Background(), dm.TopicEcommerce, dm.LanguageEn)
	require.NoError(t, err)
	searcher.AssertExpectations(t)

	assert.Equal(t, []string{"https://retaildive.example/2"}, fetched)
	assert.Equal(t, 1, cm.calls)
	require.Len(t, cm.input, 2)
	assert.Equal(t, schema.System, cm.input[0].Role)
	prompt := cm.input[1].Content
	assert.Contains(t, prompt, "[1] Customs update")
	assert.Contains(t, prompt, "[2] Retail Dive")
	assert.Contains(t, prompt, "agentic checkout")
	assert.Contains(t, prompt, "Published: 2026-10-17")
	assert.Contains(t, prompt, "tariff tariff")
	assert.Contains(t, prompt, "2026-10-19")

	assert.Equal(t, dm.TopicEcommerce, report.Topic)
	assert.Equal(t, dm.LanguageEn, report.Language)
	assert.Equal(t, "2026-10-19", report.Date)
	assert.Equal(t, groundedReply, report.RawMarkdown)
	require.Len(t, report.Items, 2)
	assert.Equal(t, []dm.GroundingSource{{Title: "Retail Dive", URI: "https://retaildive.example/2"}}, report.Items[0].Sources)
	assert.Len(t, report.Items[1].Sources, 2)
}

func TestGenerateSearchFailureDegrades(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("searxng down"))

	cm := &fakeChatModel{content: "## 1. T\n**Summary:** s\n**Impact:** i\n**Takeaway:** k\n**Sources:** [1]\n"}
	c := NewClient(cm, WithSearcher(searcher), WithClock(clock), WithFetcher(nil))

	report, err := c.Generate(context.Background(), dm.TopicAI, dm.LanguageZh)
	require.NoError(t, err)
	assert.Contains(t, cm.input[1].Content, "No news results")
	assert.Contains(t, cm.input[0].Content, "Simplified Chinese")
	require.Len(t, report.Items, 1)
	assert.Empty(t, report.Items[0].Sources)
}

func TestGenerateSlowFetchKeepsDeadlineForModel(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(&search.Response{Results: []search.Result{
		{Title: "A", URL: "https://a.example", Content: "a"},
		{Title: "B", URL: "https://b.example", Content: "b"},
		{Title: "C", URL: "https://c.example", Content: "c"},
	}}, nil)

	// 抓取不理会 ctx，每条都比整个请求的期限还慢
	slow := func(ctx context.Context, url string) (string, error) {
		time.Sleep(150 * time.Millisecond)
		return strings.Repeat("late ", 100), nil
	}
	cm := &fakeChatModel{content: groundedReply}
	c := NewClient(cm, WithSearcher(searcher), WithClock(clock), WithFetcher(slow))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	report, err := c.Generate(ctx, dm.TopicAI, dm.LanguageEn)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 1, cm.calls)
	assert.NotContains(t, cm.input[1].Content, "late")
	assert.Equal(t, []dm.GroundingSource{{Title: "B", URI: "https://b.example"}}, report.Items[0].Sources)
}

func TestGenerateFetchHonoursContext(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(&search.Response{Results: []search.Result{
		{Title: "A", URL: "https://a.example", Content: "a"},
	}}, nil)

	var sawDeadline atomic.Bool
	fetch := func(ctx context.Context, url string) (string, error) {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		<-ctx.Done()
		return "", ctx.Err()
	}
	cm := &fakeChatModel{content: groundedReply}
	c := NewClient(cm, WithSearcher(searcher), WithClock(clock), WithFetcher(fetch))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, dm.TopicAI, dm.LanguageEn)
	require.NoError(t, err)
	assert.True(t, sawDeadline.Load())
	assert.Equal(t, 1, cm.calls)
}

func TestGenerateProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   error
		denied bool
	}{
		{name: "unreachable", err: errors.New("dial tcp: connection refused"), kind: ErrProviderUnavailable},
		{name: "bad credential", err: errors.New("error, status code: 401, message: Incorrect API key provided"), kind: ErrRequestDenied, denied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := &fakeChatModel{err: tt.err}
			report, err := NewClient(cm, WithClock(clock)).Generate(context.Background(), dm.TopicAI, dm.LanguageEn)

			assert.Nil(t, report)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			assert.True(t, errors.Is(err, ErrProviderUnavailable))
			assert.Equal(t, tt.denied, errors.Is(err, ErrRequestDenied))
			assert.Contains(t, err.Error(), tt.err.Error())
			assert.Equal(t, 1, cm.calls, "single attempt, no retry")
		})
	}
}

func TestGenerateMalformedResponse(t *testing.T) {
	for _, content := range []string{"", "   ", "I am unable to help with that."} {
		cm := &fakeChatModel{content: content}
		report, err := NewClient(cm, WithClock(clock)).Generate(context.Background(), dm.TopicAI, dm.LanguageEn)
		assert.Nil(t, report)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "%q", content)
		assert.False(t, errors.Is(err, ErrProviderUnavailable))
	}
}

func TestGenerateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cm := &fakeChatModel{content: groundedReply}
	_, err := NewClient(cm, WithLimiter(NewLimiter(config.ConcurrencyConfig{RPM: 60, QPS: 1}))).Generate(ctx, dm.TopicAI, dm.LanguageEn)
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Zero(t, cm.calls)
}

func TestGenerateInvalidInputPanics(t *testing.T) {
	c := NewClient(&fakeChatModel{content: groundedReply})
	assert.Panics(t, func() { _, _ = c.Generate(context.Background(), "Crypto", dm.LanguageEn) })
	assert.Panics(t, func() { _, _ = c.Generate(context.Background(), dm.TopicAI, "fr") })
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(config.ConcurrencyConfig{})
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())

	l = NewLimiter(config.ConcurrencyConfig{RPM: 60, QPS: 2})
	assert.Equal(t, 2, l.Burst())
	assert.InDelta(t, 1.0, float64(l.Limit()), 1e-9)
}
