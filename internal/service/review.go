package service

import (
	"context"
	"log"
	"strings"

	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/state"
)

// 用户可见的提示
const (
	MsgReviewListFail   = "리뷰 목록을 불러오는 중 오류가 발생했습니다."
	MsgReviewUpdateFail = "리뷰 수정 중 오류가 발생했습니다."
	MsgReviewDeleteFail = "리뷰 삭제 중 오류가 발생했습니다."
	MsgReviewNotFound   = "리뷰를 찾을 수 없습니다."
)

// ReviewService 我的评论页
type ReviewService struct {
	backend Backend
}

// NewReviewService 创建服务
func NewReviewService(backend Backend) *ReviewService {
	return &ReviewService{backend: backend}
}

// List 拉取当前用户的评论并整体覆盖缓存
// 失败时返回缓存中的旧列表和错误
func (s *ReviewService) List(ctx context.Context, st *state.State, userID string) ([]model.Review, error) {
	reviews, err := s.backend.UserReviews(ctx, userID)
	if err != nil {
		if !errors.IsCancelled(err) {
			log.Printf("[ReviewService] 获取评论失败 user=%s: %v", userID, err)
		}
		cached, _ := st.CachedReviews()
		return cached, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	st.SetReviews(reviews)
	return reviews, nil
}

// Find 从缓存中查找评论（编辑弹窗使用）
func (s *ReviewService) Find(ctx context.Context, st *state.State, userID, reviewID string) (model.Review, error) {
	reviews, ok := st.CachedReviews()
	if !ok {
		var err error
		if reviews, err = s.List(ctx, st, userID); err != nil {
			return model.Review{}, err
		}
	}
	for _, r := range reviews {
		if r.ID.String() == reviewID {
			return r, nil
		}
	}
	return model.Review{}, errors.NotFoundError("review", reviewID)
}

// Update 修改评论，请求体为完整评论对象；成功后重新拉取列表
func (s *ReviewService) Update(ctx context.Context, st *state.State, userID, reviewID, comment, rating string) ([]model.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, errors.ValidationError(MsgReviewRequired)
	}
	r, err := ParseRating(rating)
	if err != nil {
		return nil, err
	}

	review, err := s.Find(ctx, st, userID, reviewID)
	if err != nil {
		return nil, err
	}
	review.Comment = comment
	review.Rating = model.FlexInt(r)

	if err := s.backend.UpdateReview(ctx, review); err != nil {
		log.Printf("[ReviewService] 修改评论失败 review=%s: %v", reviewID, err)
		return nil, err
	}
	return s.List(ctx, st, userID)
}

// Delete 删除评论；只能删除当前用户列表中的评论，成功后重新拉取列表
func (s *ReviewService) Delete(ctx context.Context, st *state.State, userID, reviewID string) ([]model.Review, error) {
	if strings.TrimSpace(reviewID) == "" {
		return nil, errors.PreconditionError(MsgReviewNotFound)
	}
	if _, err := s.Find(ctx, st, userID, reviewID); err != nil {
		return nil, err
	}
	if err := s.backend.DeleteReview(ctx, reviewID); err != nil {
		log.Printf("[ReviewService] 删除评论失败 review=%s: %v", reviewID, err)
		return nil, err
	}
	return s.List(ctx, st, userID)
}
