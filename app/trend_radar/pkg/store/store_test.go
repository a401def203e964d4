package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

func report(topic model.Topic, n int) *model.TrendReport {
	r := &model.TrendReport{Topic: topic, Language: model.LanguageEn, Date: "2026-10-19"}
	for i := 0; i < n; i++ {
		r.Items = append(r.Items, model.TrendItem{ID: fmt.Sprint(i), Title: "t", Summary: "s", Impact: "i", Takeaway: "k"})
	}
	return r
}

func TestNewStartsIdle(t *testing.T) {
	s := New()
	for _, topic := range model.Topics() {
		v := s.View(topic)
		assert.Equal(t, View{}, v)
		assert.Equal(t, StatusIdle, v.Status())
	}
}

func TestBeginFetchDoesNotTouchOtherTopics(t *testing.T) {
	s := New()
	tk := s.BeginFetch(model.TopicEcommerce)
	require.True(t, s.CompleteFetch(tk, report(model.TopicEcommerce, 3)))
	before := s.View(model.TopicEcommerce)

	s.BeginFetch(model.TopicAI)

	assert.Equal(t, before, s.View(model.TopicEcommerce))
	assert.True(t, s.View(model.TopicAI).IsLoading)
}

func TestRoundTrip(t *testing.T) {
	s := New()
	r := report(model.TopicAI, 10)

	tk := s.BeginFetch(model.TopicAI)
	assert.Equal(t, StatusLoading, s.View(model.TopicAI).Status())
	require.True(t, s.CompleteFetch(tk, r))

	v := s.View(model.TopicAI)
	assert.Same(t, r, v.Report)
	assert.Len(t, v.Report.Items, 10)
	assert.False(t, v.IsLoading)
	assert.Empty(t, v.Error)
	assert.Equal(t, StatusReady, v.Status())
}

func TestFailAfterCompleteKeepsReport(t *testing.T) {
	s := New()
	r := report(model.TopicAI, 2)
	require.True(t, s.CompleteFetch(s.BeginFetch(model.TopicAI), r))

	tk := s.BeginFetch(model.TopicAI)
	v := s.View(model.TopicAI)
	assert.Same(t, r, v.Report, "stale report stays visible while refreshing")
	assert.True(t, v.IsLoading)

	require.True(t, s.FailFetch(tk, "x"))
	v = s.View(model.TopicAI)
	assert.Same(t, r, v.Report)
	assert.Equal(t, "x", v.Error)
	assert.False(t, v.IsLoading)
	assert.Equal(t, StatusFailed, v.Status())
}

func TestBeginFetchClearsError(t *testing.T) {
	s := New()
	require.True(t, s.FailFetch(s.BeginFetch(model.TopicEcommerce), "boom"))

	s.BeginFetch(model.TopicEcommerce)
	v := s.View(model.TopicEcommerce)
	assert.Empty(t, v.Error)
	assert.True(t, v.IsLoading)
}

func TestCompleteAfterFailClearsError(t *testing.T) {
	s := New()
	require.True(t, s.FailFetch(s.BeginFetch(model.TopicAI), "boom"))
	r := report(model.TopicAI, 1)
	require.True(t, s.CompleteFetch(s.BeginFetch(model.TopicAI), r))
	assert.Equal(t, View{Report: r}, s.View(model.TopicAI))
}

// Overlapping requests for one topic are ordered by BeginFetch, not by arrival:
// a completion carrying an older sequence number is dropped.
func TestStaleCompletionDiscardedBySequence(t *testing.T) {
	s := New()
	older := s.BeginFetch(model.TopicAI)
	newer := s.BeginFetch(model.TopicAI)
	rNew := report(model.TopicAI, 2)
	rOld := report(model.TopicAI, 1)

	assert.False(t, s.CompleteFetch(older, rOld))
	v := s.View(model.TopicAI)
	assert.Nil(t, v.Report)
	assert.True(t, v.IsLoading, "newest request is still outstanding")

	assert.True(t, s.CompleteFetch(newer, rNew))
	assert.False(t, s.FailFetch(older, "late failure"))
	v = s.View(model.TopicAI)
	assert.Same(t, rNew, v.Report)
	assert.Empty(t, v.Error)
	assert.False(t, v.IsLoading)
}

func TestInvalidTopicPanics(t *testing.T) {
	s := New()
	assert.Panics(t, func() { s.BeginFetch("Crypto") })
	assert.Panics(t, func() { s.View("Crypto") })
}

func TestConcurrentTopicsStayIndependent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for _, topic := range model.Topics() {
		topic := topic
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tk := s.BeginFetch(topic)
				s.CompleteFetch(tk, report(topic, 1))
			}
		}()
	}
	wg.Wait()

	for _, topic := range model.Topics() {
		v := s.View(topic)
		require.NotNil(t, v.Report)
		assert.Equal(t, topic, v.Report.Topic)
		assert.False(t, v.IsLoading)
	}
}
