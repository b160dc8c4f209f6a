package model

import "time"

// MaxSearchHistory 搜索历史最多保留条数
const MaxSearchHistory = 6

// SearchHistoryEntry 一条搜索记录
type SearchHistoryEntry struct {
	Keyword   string    `json:"keyword"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchHistory 搜索历史，按时间顺序，最旧的在前
type SearchHistory []SearchHistoryEntry

// Push 追加一条记录，超过上限时淘汰最旧的（下标 0）
// 返回新切片，不修改原切片
func (h SearchHistory) Push(keyword string, at time.Time) SearchHistory {
	next := make(SearchHistory, 0, len(h)+1)
	next = append(next, h...)
	next = append(next, SearchHistoryEntry{Keyword: keyword, Timestamp: at})
	if len(next) > MaxSearchHistory {
		next = next[len(next)-MaxSearchHistory:]
	}
	return next
}

// Latest 最新在前，用于页面展示
func (h SearchHistory) Latest() []SearchHistoryEntry {
	out := make([]SearchHistoryEntry, len(h))
	for i, e := range h {
		out[len(h)-1-i] = e
	}
	return out
}

// SearchQuery 搜索请求体（POST /search-vods）
type SearchQuery struct {
	Query string `json:"query"`
}
