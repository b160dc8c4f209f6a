package model

// Feed 首页推荐列表
type Feed string

const (
	FeedWatch   Feed = "watch"   // 시청 기록 기반
	FeedYoutube Feed = "youtube" // 유튜브 트렌드
	FeedPopular Feed = "popular" // 인기
	FeedRating  Feed = "rating"  // 평점 기반
	FeedSpotify Feed = "spotify" // 음악 취향 기반，需要关联账号
)

// Feeds 首页展示顺序
var Feeds = []Feed{FeedWatch, FeedPopular, FeedYoutube, FeedSpotify, FeedRating}

var feedTitles = map[Feed]string{
	FeedWatch:   "시청 기록 기반 추천",
	FeedYoutube: "유튜브 트렌드",
	FeedPopular: "지금 인기 있는 콘텐츠",
	FeedRating:  "평점 기반 추천",
	FeedSpotify: "음악 취향 맞춤 추천",
}

// ParseFeed 解析路由参数
func ParseFeed(s string) (Feed, bool) {
	f := Feed(s)
	_, ok := feedTitles[f]
	return f, ok
}

// Title 页面标题
func (f Feed) Title() string {
	return feedTitles[f]
}

// PerUser 是否按用户区分；popular 是全局榜单，请求路径不带用户 ID
func (f Feed) PerUser() bool {
	return f != FeedPopular
}

// String 实现 fmt.Stringer
func (f Feed) String() string {
	return string(f)
}
