package state

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/utils"
)

// 会话中的键
const (
	KeyActiveProfile = "active_profile"
	KeySettop        = "settop_num"
	KeySessionKey    = "session_key"
	KeySearchHistory = "search_history"
	KeyFlash         = "flash"
)

// 服务端列表缓存名
const (
	listProfiles = "profiles"
	listReviews  = "reviews"
)

// State 单个浏览器会话的类型化状态访问
// 小值（当前用户、机顶盒号、搜索历史）放在会话里，列表放在服务端缓存中按会话 key 区分
type State struct {
	store Store
	lists *utils.TTLCache
}

// New 创建状态访问器
func New(store Store, lists *utils.TTLCache) *State {
	return &State{store: store, lists: lists}
}

// ==================== 当前用户 ====================

// ActiveProfile 当前选中的用户
func (s *State) ActiveProfile() (model.ActiveProfile, bool) {
	v, ok := s.store.Get(KeyActiveProfile)
	if !ok {
		return model.ActiveProfile{}, false
	}
	p, ok := v.(model.ActiveProfile)
	if !ok || p.ID == "" {
		s.discard(KeyActiveProfile, v)
		return model.ActiveProfile{}, false
	}
	return p, true
}

// SelectProfile 切换当前用户
// 评论缓存属于上一个用户，一并失效
func (s *State) SelectProfile(p model.ActiveProfile) error {
	if err := s.store.Set(KeyActiveProfile, p); err != nil {
		return err
	}
	if key, ok := s.sessionKey(); ok {
		s.lists.Delete(listKey(key, listReviews))
	}
	return nil
}

// ClearProfile 清除当前用户
func (s *State) ClearProfile() error {
	return s.store.Delete(KeyActiveProfile)
}

// ==================== 机顶盒号 ====================

// Settop 会话中的机顶盒号
func (s *State) Settop() (string, bool) {
	v, ok := s.store.Get(KeySettop)
	if !ok {
		return "", false
	}
	settop, ok := v.(string)
	if !ok || settop == "" {
		s.discard(KeySettop, v)
		return "", false
	}
	return settop, true
}

// SetSettop 保存机顶盒号，变更时清除用户列表缓存
func (s *State) SetSettop(settop string) error {
	if cur, ok := s.Settop(); ok && cur == settop {
		return nil
	}
	if err := s.store.Set(KeySettop, settop); err != nil {
		return err
	}
	if key, ok := s.sessionKey(); ok {
		s.lists.Delete(listKey(key, listProfiles))
	}
	return nil
}

// ==================== 会话 key ====================

// SessionKey 返回会话 key，不存在时生成
func (s *State) SessionKey() (string, error) {
	if key, ok := s.sessionKey(); ok {
		return key, nil
	}
	key := uuid.NewString()
	if err := s.store.Set(KeySessionKey, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *State) sessionKey() (string, bool) {
	v, ok := s.store.Get(KeySessionKey)
	if !ok {
		return "", false
	}
	key, ok := v.(string)
	if !ok || key == "" {
		s.discard(KeySessionKey, v)
		return "", false
	}
	return key, true
}

// ==================== 搜索历史 ====================

// SearchHistory 搜索历史，数据损坏时视为空并重置
func (s *State) SearchHistory() model.SearchHistory {
	v, ok := s.store.Get(KeySearchHistory)
	if !ok {
		return model.SearchHistory{}
	}
	h, ok := v.(model.SearchHistory)
	if !ok || len(h) > model.MaxSearchHistory {
		s.discard(KeySearchHistory, v)
		return model.SearchHistory{}
	}
	return h
}

// PushSearch 追加一条搜索记录，超出 6 条淘汰最旧的
func (s *State) PushSearch(keyword string, at time.Time) (model.SearchHistory, error) {
	h := s.SearchHistory().Push(keyword, at)
	if err := s.store.Set(KeySearchHistory, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ClearSearchHistory 清空搜索历史
func (s *State) ClearSearchHistory() error {
	return s.store.Delete(KeySearchHistory)
}

// ==================== 一次性提示 ====================

// Flash 保存一条在下一次页面渲染时显示的提示
func (s *State) Flash(message string) error {
	return s.store.Set(KeyFlash, message)
}

// PopFlash 读取并清除提示
func (s *State) PopFlash() string {
	v, ok := s.store.Get(KeyFlash)
	if !ok {
		return ""
	}
	if err := s.store.Delete(KeyFlash); err != nil {
		log.Printf("[State] 清除提示失败: %v", err)
	}
	msg, _ := v.(string)
	return msg
}

// ==================== 列表缓存 ====================

// CachedProfiles 缓存的用户列表
func (s *State) CachedProfiles() ([]model.Profile, bool) {
	v, ok := s.getList(listProfiles)
	if !ok {
		return nil, false
	}
	profiles, ok := v.([]model.Profile)
	return profiles, ok
}

// SetProfiles 整体覆盖用户列表缓存
func (s *State) SetProfiles(profiles []model.Profile) {
	s.setList(listProfiles, profiles)
}

// CachedReviews 缓存的评论列表
func (s *State) CachedReviews() ([]model.Review, bool) {
	v, ok := s.getList(listReviews)
	if !ok {
		return nil, false
	}
	reviews, ok := v.([]model.Review)
	return reviews, ok
}

// SetReviews 整体覆盖评论列表缓存
func (s *State) SetReviews(reviews []model.Review) {
	s.setList(listReviews, reviews)
}

// InvalidateReviews 评论有变更但未重新拉取列表时调用
func (s *State) InvalidateReviews() {
	if key, ok := s.sessionKey(); ok {
		s.lists.Delete(listKey(key, listReviews))
	}
}

func (s *State) getList(name string) (interface{}, bool) {
	key, ok := s.sessionKey()
	if !ok {
		return nil, false
	}
	return s.lists.Get(listKey(key, name))
}

func (s *State) setList(name string, value interface{}) {
	key, err := s.SessionKey()
	if err != nil {
		log.Printf("[State] 创建会话 key 失败: %v", err)
		return
	}
	s.lists.Set(listKey(key, name), value)
}

// discard 删除无法识别的存储值
func (s *State) discard(key string, v interface{}) {
	log.Printf("[State] 丢弃无效的会话数据 %s (%T)", key, v)
	if err := s.store.Delete(key); err != nil {
		log.Printf("[State] 删除会话数据失败 %s: %v", key, err)
	}
}

func listKey(sessionKey, name string) string {
	return sessionKey + ":" + name
}
