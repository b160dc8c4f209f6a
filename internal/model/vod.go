package model

import (
	"fmt"
	"strings"
)

// VodKind VOD 类型
type VodKind string

const (
	KindMovie      VodKind = "movie"
	KindSeries     VodKind = "series"
	KindKidsSeries VodKind = "kids"
)

// VodSummary 列表中的 VOD（推荐、搜索、相关推荐）
type VodSummary struct {
	ID     FlexID `json:"VOD_ID"`
	Title  string `json:"TITLE"`
	Poster string `json:"POSTER"`
	Genre  string `json:"GENRE,omitempty"`
}

// Actor 演员
type Actor struct {
	Name    string `json:"ACTOR_NAME"`
	Profile string `json:"PROFILE,omitempty"`
}

// VodDetailPayload 详情接口原始响应
// 电影、剧集、儿童剧集共用一个接口，字段按类型不同而缺省
type VodDetailPayload struct {
	MovieID        FlexID       `json:"MOVIE_ID,omitempty"`
	SeriesID       FlexID       `json:"SERIES_ID,omitempty"`
	KidsSeriesID   FlexID       `json:"K_SERIES_ID,omitempty"`
	Title          string       `json:"TITLE"`
	Genre          string       `json:"GENRE"`
	MovieOverview  string       `json:"MOVIE_OVERVIEW,omitempty"`
	SeriesOverview string       `json:"SERIES_OVERVIEW,omitempty"`
	Poster         string       `json:"POSTER"`
	Trailer        string       `json:"TRAILER"`
	ReleaseDate    string       `json:"RELEASE_DATE"`
	Runtime        FlexInt      `json:"RTM"`
	MovieRating    string       `json:"MOVIE_RATING,omitempty"`
	SeriesRating   string       `json:"SERIES_RATING,omitempty"`
	Actors         []Actor      `json:"ACTOR,omitempty"`
	Cast           string       `json:"CAST,omitempty"`
	RecommendList  []VodSummary `json:"recommend_list"`
	LikeStatus     bool         `json:"like_status"`
	Reviews        []Review     `json:"review"`
}

// Vod 统一后的详情
type Vod struct {
	ID          FlexID
	VodID       FlexID // 页面路由使用的 VOD_ID
	Kind        VodKind
	SeriesID    FlexID
	Title       string
	Genres      string
	Summary     string
	PosterURL   string
	TrailerURL  string
	ReleaseDate string
	Duration    int
	Rating      string
	Cast        []Actor
	Related     []VodSummary
	Liked       bool
	Reviews     []Review
}

// IsSeries 是否有季/集
func (v *Vod) IsSeries() bool {
	return v.Kind == KindSeries || v.Kind == KindKidsSeries
}

// IsKids 是否儿童剧集（季/集使用 kids 接口）
func (v *Vod) IsKids() bool {
	return v.Kind == KindKidsSeries
}

// Normalize 将电影/剧集/儿童剧集三种形态统一为 Vod
func (p *VodDetailPayload) Normalize(vodID FlexID) *Vod {
	v := &Vod{
		VodID:       vodID,
		Title:       p.Title,
		Genres:      p.Genre,
		PosterURL:   p.Poster,
		TrailerURL:  p.Trailer,
		ReleaseDate: p.ReleaseDate,
		Duration:    p.Runtime.Int(),
		Liked:       p.LikeStatus,
		Related:     p.RecommendList,
		Reviews:     p.Reviews,
	}

	switch {
	case !p.MovieID.IsZero():
		v.ID = p.MovieID
		v.Kind = KindMovie
	case !p.SeriesID.IsZero():
		v.ID = p.SeriesID
		v.SeriesID = p.SeriesID
		v.Kind = KindSeries
	case !p.KidsSeriesID.IsZero():
		v.ID = p.KidsSeriesID
		v.SeriesID = p.KidsSeriesID
		v.Kind = KindKidsSeries
	default:
		v.ID = vodID
		v.Kind = KindMovie
	}

	v.Summary = firstNonEmpty(p.MovieOverview, p.SeriesOverview)
	v.Rating = firstNonEmpty(p.MovieRating, p.SeriesRating)

	if p.Actors != nil {
		v.Cast = p.Actors
	} else {
		v.Cast = ParseCast(p.Cast)
	}
	return v
}

// ParseCast 解析逗号分隔的演员名
func ParseCast(cast string) []Actor {
	actors := []Actor{}
	for _, name := range strings.Split(cast, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		actors = append(actors, Actor{Name: name})
	}
	return actors
}

// Season 季
type Season struct {
	ID           FlexID  `json:"SEASON_ID"`
	Number       FlexInt `json:"SEASON_NUM"`
	Name         string  `json:"SEASON_NAME,omitempty"`
	EpisodeCount FlexInt `json:"EPISODE_COUNT"`
}

// Label 页面显示名，如 "시즌 1"
func (s Season) Label() string {
	return fmt.Sprintf("시즌 %d", s.Number.Int())
}

// Episode 集
type Episode struct {
	ID       FlexID  `json:"EPISODE_ID"`
	Name     string  `json:"EPISODE_NAME"`
	Overview string  `json:"EPISODE_OVERVIEW"`
	Still    string  `json:"EPISODE_STILL"`
	AirDate  string  `json:"EPISODE_AIR_DATE"`
	Runtime  FlexInt `json:"EPISODE_RTM"`
}

// LikeRequest 收藏添加/删除请求体（POST/DELETE /like/{userId}）
type LikeRequest struct {
	VodID FlexID `json:"VOD_ID"`
}

// SpotifyFeed 音乐推荐接口响应
// status 为 false 表示账号尚未关联
type SpotifyFeed struct {
	Status *bool        `json:"status,omitempty"`
	Vods   []VodSummary `json:"vods"`
}

// Linked 是否已关联
func (f *SpotifyFeed) Linked() bool {
	return f.Status == nil || *f.Status
}

// BackendAck 写接口的通用响应 {"response": "..."}
type BackendAck struct {
	Response string `json:"response"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
