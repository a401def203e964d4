package store

import (
	"sync"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

// Status 单个领域的状态机位置
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// View 某个领域当前的视图状态，Error 为空表示没有错误
type View struct {
	Report    *model.TrendReport `json:"report,omitempty"`
	IsLoading bool               `json:"is_loading"`
	Error     string             `json:"error,omitempty"`
}

// Status 根据视图推导状态机位置
func (v View) Status() Status {
	switch {
	case v.IsLoading:
		return StatusLoading
	case v.Error != "":
		return StatusFailed
	case v.Report != nil:
		return StatusReady
	default:
		return StatusIdle
	}
}

// Ticket 标识一次 BeginFetch，完成或失败时必须带回
type Ticket struct {
	Topic model.Topic
	Seq   uint64
}

type entry struct {
	view View
	seq  uint64
}

// Store 按领域独立保存报告、加载状态和错误，是这些状态唯一的写入方
type Store struct {
	mu      sync.RWMutex
	entries map[model.Topic]*entry
}

// New 为每个领域创建 Idle 状态
func New() *Store {
	s := &Store{entries: make(map[model.Topic]*entry)}
	for _, t := range model.Topics() {
		s.entries[t] = &entry{}
	}
	return s
}

// BeginFetch 进入加载状态并清除错误，保留旧报告。允许在加载中重复调用，
// 每次调用都会产生更新的序号，旧序号的结果随后会被丢弃。
func (s *Store) BeginFetch(topic model.Topic) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[model.MustTopic(topic)]
	e.seq++
	e.view.IsLoading = true
	e.view.Error = ""
	return Ticket{Topic: topic, Seq: e.seq}
}

// CompleteFetch 写入新报告。返回 false 表示该请求已被更新的请求取代，状态未改变。
func (s *Store) CompleteFetch(tk Ticket, report *model.TrendReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[model.MustTopic(tk.Topic)]
	if tk.Seq != e.seq {
		return false
	}
	e.view = View{Report: report}
	return true
}

// FailFetch 记录错误，保留上一次成功的报告。返回值含义同 CompleteFetch。
func (s *Store) FailFetch(tk Ticket, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[model.MustTopic(tk.Topic)]
	if tk.Seq != e.seq {
		return false
	}
	e.view.IsLoading = false
	e.view.Error = message
	return true
}

// View 读取当前状态，不会阻塞在任何网络请求上
func (s *Store) View(topic model.Topic) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[model.MustTopic(topic)].view
}
