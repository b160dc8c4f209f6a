package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/hellod/internal/model"
	"github.com/user/hellod/internal/state"
	"github.com/user/hellod/internal/utils"
)

// fakeBackend 内存后端，记录调用
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	profiles    []model.Profile
	profilesErr error
	createErr   error

	feeds      map[model.Feed][]model.VodSummary
	feedErrs   map[model.Feed]error
	feedDelay  time.Duration
	spotify    func(n int) (*model.SpotifyFeed, error)
	spotifyN   int
	authURL    string
	authURLErr error
	detail     *model.VodDetailPayload
	detailErr  error
	seasons    []model.Season
	episodes   map[string][]model.Episode
	likeErr    error
	reviews    []model.Review
	reviewErr  error
	lastReview interface{}
	search     []model.VodSummary
	searchErr  error
	searchWait chan struct{}
}

func (f *fakeBackend) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) countPrefix(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeBackend) ListProfiles(ctx context.Context, settop string) ([]model.Profile, error) {
	f.record("ListProfiles %s", settop)
	return f.profiles, f.profilesErr
}

func (f *fakeBackend) CreateProfile(ctx context.Context, p model.NewProfile) error {
	f.record("CreateProfile %s", p.Name)
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.profiles = append(f.profiles, model.Profile{ID: model.FlexID(fmt.Sprint(len(f.profiles) + 1)), Name: p.Name})
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Feed(ctx context.Context, feed model.Feed, userID string) ([]model.VodSummary, error) {
	f.record("Feed %s %s", feed, userID)
	if f.feedDelay > 0 {
		select {
		case <-time.After(f.feedDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.feedErrs[feed]; err != nil {
		return nil, err
	}
	return f.feeds[feed], nil
}

func (f *fakeBackend) SpotifyFeed(ctx context.Context, userID string) (*model.SpotifyFeed, error) {
	f.mu.Lock()
	f.spotifyN++
	n := f.spotifyN
	f.mu.Unlock()
	f.record("SpotifyFeed %s", userID)
	if f.spotify == nil {
		return &model.SpotifyFeed{Vods: f.feeds[model.FeedSpotify]}, nil
	}
	return f.spotify(n)
}

func (f *fakeBackend) SpotifyAuthURL(ctx context.Context, userID string) (string, error) {
	f.record("SpotifyAuthURL %s", userID)
	return f.authURL, f.authURLErr
}

func (f *fakeBackend) VodDetail(ctx context.Context, vodID, userID string) (*model.VodDetailPayload, error) {
	f.record("VodDetail %s %s", vodID, userID)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	cp := *f.detail
	f.mu.Lock()
	cp.Reviews = append([]model.Review(nil), f.reviews...)
	f.mu.Unlock()
	return &cp, nil
}

func (f *fakeBackend) Seasons(ctx context.Context, seriesID string, kids bool) ([]model.Season, error) {
	f.record("Seasons %s kids=%v", seriesID, kids)
	return f.seasons, nil
}

func (f *fakeBackend) Episodes(ctx context.Context, seasonID string, kids bool) ([]model.Episode, error) {
	f.record("Episodes %s kids=%v", seasonID, kids)
	return f.episodes[seasonID], nil
}

func (f *fakeBackend) AddLike(ctx context.Context, userID string, vodID model.FlexID) error {
	f.record("AddLike %s %s", userID, vodID)
	return f.likeErr
}

func (f *fakeBackend) RemoveLike(ctx context.Context, userID string, vodID model.FlexID) error {
	f.record("RemoveLike %s %s", userID, vodID)
	return f.likeErr
}

func (f *fakeBackend) CreateReview(ctx context.Context, userID string, r model.NewReview) error {
	f.record("CreateReview %s %s", userID, r.VodID)
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.mu.Lock()
	f.lastReview = r
	f.reviews = append(f.reviews, model.Review{ID: model.FlexID(fmt.Sprint(len(f.reviews) + 1)), Comment: r.Comment})
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) UpdateReview(ctx context.Context, r model.Review) error {
	f.record("UpdateReview %s", r.ID)
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.mu.Lock()
	f.lastReview = r
	for i := range f.reviews {
		if f.reviews[i].ID == r.ID {
			f.reviews[i] = r
		}
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) DeleteReview(ctx context.Context, reviewID string) error {
	f.record("DeleteReview %s", reviewID)
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.mu.Lock()
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.ID.String() != reviewID {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) UserReviews(ctx context.Context, userID string) ([]model.Review, error) {
	f.record("UserReviews %s", userID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Review(nil), f.reviews...), nil
}

func (f *fakeBackend) Search(ctx context.Context, term string) ([]model.VodSummary, error) {
	f.record("Search %s", term)
	if f.searchWait != nil {
		<-f.searchWait
	}
	return f.search, f.searchErr
}

func (f *fakeBackend) SearchVods(ctx context.Context, query string) ([]model.VodSummary, error) {
	f.record("SearchVods %s", query)
	return f.search, f.searchErr
}

func newTestState() *state.State {
	return state.New(state.NewMemoryStore(), utils.NewTTLCache(time.Minute))
}
