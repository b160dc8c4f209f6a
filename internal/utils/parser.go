package utils

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

// 支持 youtu.be/ID、youtube.com/embed/ID、youtube.com/v/ID、watch?v=ID 等形式
var youtubeIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:embed/|v/|.*v=|.*/))([\w-]{11})`)

// YoutubeID 从预告片地址中提取 11 位视频 ID，无法解析时返回 false
func YoutubeID(trailerURL string) (string, bool) {
	trailerURL = strings.TrimSpace(trailerURL)
	if trailerURL == "" {
		return "", false
	}
	m := youtubeIDPattern.FindStringSubmatch(trailerURL)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// YoutubeEmbedURL 返回嵌入播放地址
func YoutubeEmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

// Sample 打乱后取前 n 个，不修改原切片
// rng 为 nil 时使用全局随机源
func Sample[T any](items []T, n int, rng *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
