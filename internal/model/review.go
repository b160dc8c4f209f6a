package model

import "strings"

// 写接口成功时的响应文本
const (
	AckReviewInserted = "FINISH INSERT REVIEW"
	AckReviewUpdated  = "FINISH UPDATE REVIEW"
	AckReviewDeleted  = "FINISH DELETE REVIEW"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论
type Review struct {
	ID        FlexID  `json:"REVIEW_ID,omitempty"`
	VodID     FlexID  `json:"VOD_ID,omitempty"`
	UserName  string  `json:"USER_NAME,omitempty"`
	Title     string  `json:"TITLE,omitempty"`
	Poster    string  `json:"POSTER,omitempty"`
	Comment   string  `json:"COMMENT"`
	Rating    FlexInt `json:"RATING"`
	WriteDate string  `json:"REVIEW_WDATE,omitempty"`
}

// Stars 星级文本，如 "★ ★ ★"
func (r Review) Stars() string {
	n := r.Rating.Int()
	if n < 0 {
		n = 0
	}
	if n > MaxRating {
		n = MaxRating
	}
	return strings.TrimSpace(strings.Repeat("★ ", n))
}

// NewReview 写评论请求体（POST /review/{userId}），RATING 以字符串发送
type NewReview struct {
	VodID   FlexID `json:"VOD_ID"`
	Rating  string `json:"RATING"`
	Comment string `json:"COMMENT"`
}

// ValidRating 评分是否在 1–5 之间
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
