package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/utils"
)

// Client 推荐/搜索后端 REST 客户端
// 读接口走 readURL，增删改接口走 writeURL
type Client struct {
	readURL    string
	writeURL   string
	httpClient *http.Client
}

// Config 客户端配置
type Config struct {
	ReadURL    string
	WriteURL   string
	Timeout    time.Duration
	HTTPClient *http.Client // 可选，测试时注入
}

// New 创建客户端
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.WriteURL == "" {
		cfg.WriteURL = cfg.ReadURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		readURL:    cfg.ReadURL,
		writeURL:   cfg.WriteURL,
		httpClient: httpClient,
	}
}

// ==================== 用户 ====================

// ListProfiles 获取机顶盒下的用户列表
func (c *Client) ListProfiles(ctx context.Context, settopNum string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := c.get(ctx, "/login/"+url.PathEscape(settopNum), &profiles)
	return profiles, err
}

// CreateProfile 新建用户
func (c *Client) CreateProfile(ctx context.Context, p model.NewProfile) error {
	return c.send(ctx, http.MethodPost, "/user/", p, nil)
}

// ==================== 首页推荐 ====================

// Feed 获取推荐列表（spotify 以外）
func (c *Client) Feed(ctx context.Context, feed model.Feed, userID string) ([]model.VodSummary, error) {
	var vods []model.VodSummary
	err := c.get(ctx, feedPath(feed, userID), &vods)
	return vods, err
}

// SpotifyFeed 获取音乐推荐，未关联时 Linked() 为 false
func (c *Client) SpotifyFeed(ctx context.Context, userID string) (*model.SpotifyFeed, error) {
	var feed model.SpotifyFeed
	if err := c.get(ctx, feedPath(model.FeedSpotify, userID), &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// SpotifyAuthURL 获取账号关联授权地址
func (c *Client) SpotifyAuthURL(ctx context.Context, userID string) (string, error) {
	var ack model.BackendAck
	endpoint := "/mainpage/spotify/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodPost, c.readURL, endpoint, nil, &ack); err != nil {
		return "", err
	}
	if ack.Response == "" {
		return "", errors.MalformedError("授权地址为空", nil).WithContext("endpoint", endpoint)
	}
	return ack.Response, nil
}

func feedPath(feed model.Feed, userID string) string {
	p := "/mainpage/home/" + string(feed)
	if feed.PerUser() {
		p += "/" + url.PathEscape(userID)
	}
	return p
}

// ==================== 详情页 ====================

// VodDetail 获取 VOD 详情
func (c *Client) VodDetail(ctx context.Context, vodID, userID string) (*model.VodDetailPayload, error) {
	var payload model.VodDetailPayload
	endpoint := fmt.Sprintf("/detailpage/vod_detail/%s/%s", url.PathEscape(vodID), url.PathEscape(userID))
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Seasons 获取剧集的季列表
func (c *Client) Seasons(ctx context.Context, seriesID string, kids bool) ([]model.Season, error) {
	endpoint := "/detailpage/season_detail/" + url.PathEscape(seriesID)
	if kids {
		endpoint = "/detailpage/kids_season_detail/" + url.PathEscape(seriesID)
	}
	var seasons []model.Season
	err := c.get(ctx, endpoint, &seasons)
	return seasons, err
}

// Episodes 获取某一季的集列表
func (c *Client) Episodes(ctx context.Context, seasonID string, kids bool) ([]model.Episode, error) {
	endpoint := "/detailpage/season_detail/episode_detail/" + url.PathEscape(seasonID)
	if kids {
		endpoint = "/detailpage/kids_season_detail/kids_episode_detail/" + url.PathEscape(seasonID)
	}
	var episodes []model.Episode
	err := c.get(ctx, endpoint, &episodes)
	return episodes, err
}

// AddLike 加入收藏
func (c *Client) AddLike(ctx context.Context, userID string, vodID model.FlexID) error {
	return c.send(ctx, http.MethodPost, "/like/"+url.PathEscape(userID), model.LikeRequest{VodID: vodID}, nil)
}

// RemoveLike 取消收藏（DELETE 带请求体）
func (c *Client) RemoveLike(ctx context.Context, userID string, vodID model.FlexID) error {
	return c.send(ctx, http.MethodDelete, "/like/"+url.PathEscape(userID), model.LikeRequest{VodID: vodID}, nil)
}

// ==================== 评论 ====================

// CreateReview 写评论
func (c *Client) CreateReview(ctx context.Context, userID string, r model.NewReview) error {
	return c.sendAck(ctx, http.MethodPost, "/review/"+url.PathEscape(userID), r, model.AckReviewInserted)
}

// UpdateReview 修改评论，请求体为完整评论
func (c *Client) UpdateReview(ctx context.Context, r model.Review) error {
	return c.sendAck(ctx, http.MethodPut, "/review/"+url.PathEscape(r.ID.String()), r, model.AckReviewUpdated)
}

// DeleteReview 删除评论
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.sendAck(ctx, http.MethodDelete, "/review/"+url.PathEscape(reviewID), nil, model.AckReviewDeleted)
}

// UserReviews 获取用户写过的评论
func (c *Client) UserReviews(ctx context.Context, userID string) ([]model.Review, error) {
	var reviews []model.Review
	err := c.get(ctx, "/review/"+url.PathEscape(userID), &reviews)
	return reviews, err
}

// ==================== 搜索 ====================

// Search 关键词搜索（GET /search/{term}）
func (c *Client) Search(ctx context.Context, term string) ([]model.VodSummary, error) {
	var vods []model.VodSummary
	err := c.get(ctx, "/search/"+url.PathEscape(term), &vods)
	return vods, err
}

// SearchVods 关键词搜索（POST /search-vods）
func (c *Client) SearchVods(ctx context.Context, query string) ([]model.VodSummary, error) {
	var vods []model.VodSummary
	err := c.do(ctx, http.MethodPost, c.readURL, "/search-vods", model.SearchQuery{Query: query}, &vods)
	return vods, err
}

// ==================== 内部方法 ====================

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, c.readURL, endpoint, nil, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out interface{}) error {
	return c.do(ctx, method, c.writeURL, endpoint, body, out)
}

// sendAck 发送写请求并校验后端确认文本
func (c *Client) sendAck(ctx context.Context, method, endpoint string, body interface{}, want string) error {
	var ack model.BackendAck
	if err := c.send(ctx, method, endpoint, body, &ack); err != nil {
		return err
	}
	if ack.Response != want {
		e := errors.New(errors.CodeStatus, fmt.Sprintf("后端未确认操作: %q", ack.Response)).
			WithContext("endpoint", endpoint)
		e.StatusCode = http.StatusOK
		return e
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, baseURL, endpoint string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, baseURL+endpoint, body)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "创建请求失败")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.failure(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.StatusError(endpoint, resp.StatusCode)
	}
	if out == nil {
		return nil
	}

	data, err := utils.ReadBody(resp)
	if err != nil {
		return c.failure(ctx, endpoint, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[Backend] 解析JSON失败 %s %s: %v, 响应体: %.200s", method, endpoint, err, data)
		return errors.MalformedError("解析JSON失败", err).WithContext("endpoint", endpoint)
	}
	return nil
}

// failure 区分发起方取消与请求本身失败
// 只有调用方 ctx 已结束才算取消，客户端超时仍是可展示的失败
func (c *Client) failure(ctx context.Context, endpoint string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Cancelled(ctxErr).WithContext("endpoint", endpoint)
	}
	return errors.TransportError(endpoint, err)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	utils.SetJSONHeaders(req, body != nil)
	return req, nil
}
