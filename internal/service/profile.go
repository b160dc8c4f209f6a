package service

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/state"
)

// 用户可见的提示
const (
	MsgSettopMissing   = "셋탑 번호를 찾을 수 없습니다."
	MsgProfileLoadFail = "사용자 데이터를 가져오는 중 오류 발생"
	MsgProfileFields   = "모든 필드를 입력하세요."
	MsgProfileLimit    = "프로필은 최대 4개까지 만들 수 있습니다."
	MsgProfileCreated  = "사용자 등록이 완료되었습니다."
	MsgProfileFail     = "사용자 등록 중 오류가 발생했습니다."
)

// ProfileForm 新建用户表单
type ProfileForm struct {
	Name   string `form:"name" json:"name" validate:"required,max=20"`
	Gender string `form:"gender" json:"gender" validate:"required,oneof=남성 여성"`
	Age    string `form:"age" json:"age" validate:"required,numeric"`
}

// ProfileService 用户选择页
type ProfileService struct {
	backend  Backend
	validate *validator.Validate
	// 未在会话中指定机顶盒号时使用
	defaultSettop string
}

// NewProfileService 创建服务
func NewProfileService(backend Backend, defaultSettop string) *ProfileService {
	return &ProfileService{
		backend:       backend,
		validate:      validator.New(),
		defaultSettop: defaultSettop,
	}
}

// ResolveSettop 机顶盒号：请求参数 > 会话 > 配置
// 请求参数中的值会写回会话
func (s *ProfileService) ResolveSettop(st *state.State, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if err := st.SetSettop(override); err != nil {
			log.Printf("[ProfileService] 保存机顶盒号失败: %v", err)
		}
		return override, nil
	}
	if settop, ok := st.Settop(); ok {
		return settop, nil
	}
	if s.defaultSettop != "" {
		return s.defaultSettop, nil
	}
	return "", errors.PreconditionError(MsgSettopMissing)
}

// List 拉取用户列表并整体覆盖缓存
// 失败时返回缓存中的旧列表（可能为空）和错误
func (s *ProfileService) List(ctx context.Context, st *state.State, settop string) ([]model.Profile, error) {
	profiles, err := s.backend.ListProfiles(ctx, settop)
	if err != nil {
		if !errors.IsCancelled(err) {
			log.Printf("[ProfileService] 获取用户列表失败 settop=%s: %v", settop, err)
		}
		cached, _ := st.CachedProfiles()
		return cached, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	st.SetProfiles(profiles)
	return profiles, nil
}

// CanAdd 是否显示"添加用户"入口
func (s *ProfileService) CanAdd(profiles []model.Profile) bool {
	return model.CanAddProfile(len(profiles))
}

// Create 校验并创建用户，成功后刷新列表
func (s *ProfileService) Create(ctx context.Context, st *state.State, settop string, form ProfileForm) ([]model.Profile, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Gender = strings.TrimSpace(form.Gender)
	form.Age = strings.TrimSpace(form.Age)

	if err := s.validate.Struct(form); err != nil {
		return nil, errors.ValidationError(MsgProfileFields)
	}
	age, err := strconv.Atoi(form.Age)
	if err != nil || s.validate.Var(age, "gte=0,lte=99") != nil {
		return nil, errors.ValidationError(MsgProfileFields)
	}

	if cached, ok := st.CachedProfiles(); ok && !s.CanAdd(cached) {
		return cached, errors.ValidationError(MsgProfileLimit)
	}

	err = s.backend.CreateProfile(ctx, model.NewProfile{
		SettopNum: settop,
		Name:      form.Name,
		Gender:    form.Gender,
		Age:       age,
	})
	if err != nil {
		log.Printf("[ProfileService] 创建用户失败: %v", err)
		return nil, err
	}

	return s.List(ctx, st, settop)
}

// Select 选中用户
// 名称以缓存列表为准，缓存缺失时使用表单中的名称
func (s *ProfileService) Select(st *state.State, id, name string) (model.ActiveProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.ActiveProfile{}, errors.PreconditionError("사용자를 찾을 수 없습니다.")
	}
	if cached, ok := st.CachedProfiles(); ok {
		for _, p := range cached {
			if p.ID.String() == id {
				name = p.Name
				break
			}
		}
	}
	active := model.ActiveProfile{ID: id, Name: name}
	if err := st.SelectProfile(active); err != nil {
		return model.ActiveProfile{}, errors.Wrap(err, errors.CodeUnknown, "保存当前用户失败")
	}
	return active, nil
}
