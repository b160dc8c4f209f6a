package service

import (
	"context"

	"github.com/user/hellod/internal/model"
)

// Backend 页面控制器依赖的远程接口，由 backend.Client 实现
type Backend interface {
	ListProfiles(ctx context.Context, settopNum string) ([]model.Profile, error)
	CreateProfile(ctx context.Context, p model.NewProfile) error

	Feed(ctx context.Context, feed model.Feed, userID string) ([]model.VodSummary, error)
	SpotifyFeed(ctx context.Context, userID string) (*model.SpotifyFeed, error)
	SpotifyAuthURL(ctx context.Context, userID string) (string, error)

	VodDetail(ctx context.Context, vodID, userID string) (*model.VodDetailPayload, error)
	Seasons(ctx context.Context, seriesID string, kids bool) ([]model.Season, error)
	Episodes(ctx context.Context, seasonID string, kids bool) ([]model.Episode, error)
	AddLike(ctx context.Context, userID string, vodID model.FlexID) error
	RemoveLike(ctx context.Context, userID string, vodID model.FlexID) error

	CreateReview(ctx context.Context, userID string, r model.NewReview) error
	UpdateReview(ctx context.Context, r model.Review) error
	DeleteReview(ctx context.Context, reviewID string) error
	UserReviews(ctx context.Context, userID string) ([]model.Review, error)

	Search(ctx context.Context, term string) ([]model.VodSummary, error)
	SearchVods(ctx context.Context, query string) ([]model.VodSummary, error)
}
