package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/hellod/internal/errors"
	"github.com/user/hellod/internal/model"
)

// ==================== 用户 ====================

func TestProfileService_CanAdd(t *testing.T) {
	svc := NewProfileService(&fakeBackend{}, "")
	for n := 0; n <= 5; n++ {
		profiles := make([]model.Profile, n)
		assert.Equal(t, n < 4, svc.CanAdd(profiles), "n=%d", n)
	}
}

func TestProfileService_ResolveSettop(t *testing.T) {
	st := newTestState()

	_, err := NewProfileService(&fakeBackend{}, "").ResolveSettop(st, "")
	assert.True(t, errors.IsPrecondition(err))

	svc := NewProfileService(&fakeBackend{}, "1001")
	settop, err := svc.ResolveSettop(st, "")
	require.NoError(t, err)
	assert.Equal(t, "1001", settop)

	settop, err = svc.ResolveSettop(st, "2002")
	require.NoError(t, err)
	assert.Equal(t, "2002", settop)

	settop, err = svc.ResolveSettop(st, "")
	require.NoError(t, err)
	assert.Equal(t, "2002", settop, "override persists in state")
}

func TestProfileService_CreateValidatesBeforeCalling(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewProfileService(fb, "1001")
	st := newTestState()

	forms := []ProfileForm{
		{Name: "", Gender: "남성", Age: "30"},
		{Name: "철수", Gender: "", Age: "30"},
		{Name: "철수", Gender: "남성", Age: ""},
		{Name: "철수", Gender: "기타", Age: "30"},
		{Name: "철수", Gender: "남성", Age: "120"},
		{Name: "   ", Gender: "남성", Age: "30"},
	}
	for _, form := range forms {
		_, err := svc.Create(context.Background(), st, "1001", form)
		assert.True(t, errors.IsValidation(err), "%+v", form)
	}
	assert.Empty(t, fb.Calls())
}

func TestProfileService_CreateRefreshesList(t *testing.T) {
	fb := &fakeBackend{profiles: []model.Profile{{ID: "1", Name: "Alice"}}}
	svc := NewProfileService(fb, "1001")
	st := newTestState()

	profiles, err := svc.Create(context.Background(), st, "1001", ProfileForm{Name: "Bob", Gender: "남성", Age: "40"})
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, []string{"CreateProfile Bob", "ListProfiles 1001"}, fb.Calls())

	cached, ok := st.CachedProfiles()
	require.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestProfileService_ListFailureKeepsPriorState(t *testing.T) {
	fb := &fakeBackend{profiles: []model.Profile{{ID: "1", Name: "Alice"}}}
	svc := NewProfileService(fb, "1001")
	st := newTestState()

	_, err := svc.List(context.Background(), st, "1001")
	require.NoError(t, err)

	fb.profilesErr = errors.StatusError("/login/1001", 500)
	profiles, err := svc.List(context.Background(), st, "1001")
	require.Error(t, err)
	assert.Len(t, profiles, 1, "cached list returned on failure")
}

func TestProfileService_SelectPersists(t *testing.T) {
	fb := &fakeBackend{profiles: []model.Profile{{ID: "1", Name: "Alice"}}}
	svc := NewProfileService(fb, "1001")
	st := newTestState()
	_, _ = svc.List(context.Background(), st, "1001")

	active, err := svc.Select(st, "1", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", active.Name)

	got, ok := st.ActiveProfile()
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)
}

// ==================== 首页 ====================

func TestFeedService_LoadAll_OneFailureDoesNotBlockOthers(t *testing.T) {
	fb := &fakeBackend{
		feeds: map[model.Feed][]model.VodSummary{
			model.FeedWatch:   {{ID: "1"}},
			model.FeedPopular: {{ID: "2"}},
			model.FeedRating:  {{ID: "3"}},
			model.FeedSpotify: {{ID: "4"}},
		},
		feedErrs:  map[model.Feed]error{model.FeedYoutube: errors.StatusError("/mainpage/home/youtube/1", 500)},
		feedDelay: 20 * time.Millisecond,
	}
	svc := NewFeedService(fb, 10*time.Millisecond, time.Second)

	results := svc.LoadAll(context.Background(), "1")
	require.Len(t, results, 5)

	byFeed := map[model.Feed]FeedResult{}
	for _, r := range results {
		byFeed[r.Feed] = r
	}
	assert.Equal(t, MsgFeedFail, byFeed[model.FeedYoutube].Error)
	assert.Empty(t, byFeed[model.FeedYoutube].Vods)
	for _, f := range []model.Feed{model.FeedWatch, model.FeedPopular, model.FeedRating, model.FeedSpotify} {
		assert.Empty(t, byFeed[f].Error, f)
		assert.Len(t, byFeed[f].Vods, 1, f)
	}
	assert.Equal(t, 4, fb.countPrefix("Feed "), "four plain feeds requested")
	assert.Equal(t, 1, fb.countPrefix("SpotifyFeed"))

	// 保持首页顺序
	for i, f := range model.Feeds {
		assert.Equal(t, f, results[i].Feed)
	}
}

func TestFeedService_SpotifyNotLinked(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) { return &model.SpotifyFeed{Status: &notLinked}, nil },
		authURL: "https://auth.example/authorize",
	}
	svc := NewFeedService(fb, 10*time.Millisecond, time.Second)

	res := svc.Load(context.Background(), model.FeedSpotify, "1")
	assert.False(t, res.Linked)
	assert.Equal(t, "https://auth.example/authorize", res.AuthURL)
	assert.Empty(t, res.Error)
}

func TestFeedService_SpotifyAuthURLFailureHidesLinkButton(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify:    func(n int) (*model.SpotifyFeed, error) { return &model.SpotifyFeed{Status: &notLinked}, nil },
		authURLErr: errors.StatusError("/mainpage/spotify/1", 500),
	}
	svc := NewFeedService(fb, 10*time.Millisecond, time.Second)

	res := svc.Load(context.Background(), model.FeedSpotify, "1")
	assert.True(t, res.Linked, "link entry needs an auth URL")
	assert.Empty(t, res.AuthURL)
	assert.Equal(t, MsgSpotifyFail, res.Error)
	assert.Empty(t, res.Vods)
}

func TestLinkAwaiter_KeepsPollingAfterBackendTimeout(t *testing.T) {
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) {
			if n < 3 {
				return nil, errors.TransportError("/mainpage/home/spotify/1", context.DeadlineExceeded)
			}
			return &model.SpotifyFeed{Vods: []model.VodSummary{{ID: "9"}}}, nil
		},
	}
	a := NewLinkAwaiter(fb, 5*time.Millisecond, time.Second)

	feed, err := a.Await(context.Background(), "session", "1")
	require.NoError(t, err)
	assert.Len(t, feed.Vods, 1)
}

func TestLinkAwaiter_CompletesWhenLinked(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) {
			if n < 3 {
				return &model.SpotifyFeed{Status: &notLinked}, nil
			}
			return &model.SpotifyFeed{Vods: []model.VodSummary{{ID: "9"}}}, nil
		},
	}
	a := NewLinkAwaiter(fb, 5*time.Millisecond, time.Second)

	feed, err := a.Await(context.Background(), "session", "1")
	require.NoError(t, err)
	assert.Len(t, feed.Vods, 1)
	assert.Equal(t, 0, a.Pending())
}

func TestLinkAwaiter_Timeout(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) { return &model.SpotifyFeed{Status: &notLinked}, nil },
	}
	a := NewLinkAwaiter(fb, 5*time.Millisecond, 30*time.Millisecond)

	_, err := a.Await(context.Background(), "session", "1")
	assert.True(t, errors.IsTimeout(err))
}

func TestLinkAwaiter_CancelledByTeardown(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) { return &model.SpotifyFeed{Status: &notLinked}, nil },
	}
	// 0 表示不限时，只能由调用方结束
	a := NewLinkAwaiter(fb, 5*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := a.Await(ctx, "session", "1")
	assert.True(t, errors.IsCancelled(err))
	assert.Equal(t, 0, a.Pending())
}

func TestLinkAwaiter_CancelOnProfileSwitch(t *testing.T) {
	notLinked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) { return &model.SpotifyFeed{Status: &notLinked}, nil },
	}
	a := NewLinkAwaiter(fb, 5*time.Millisecond, 0)

	done := make(chan error, 1)
	go func() {
		_, err := a.Await(context.Background(), "session", "1")
		done <- err
	}()

	require.Eventually(t, func() bool { return fb.countPrefix("SpotifyFeed") > 0 }, time.Second, 5*time.Millisecond)
	a.Cancel("session")

	select {
	case err := <-done:
		assert.True(t, errors.IsCancelled(err))
	case <-time.After(time.Second):
		t.Fatal("await was not cancelled")
	}
}

func TestLinkAwaiter_NewerAwaitSupersedes(t *testing.T) {
	notLinked := false
	var mu sync.Mutex
	linked := false
	fb := &fakeBackend{
		spotify: func(n int) (*model.SpotifyFeed, error) {
			mu.Lock()
			defer mu.Unlock()
			if linked {
				return &model.SpotifyFeed{}, nil
			}
			return &model.SpotifyFeed{Status: &notLinked}, nil
		},
	}
	a := NewLinkAwaiter(fb, 5*time.Millisecond, time.Second)

	first := make(chan error, 1)
	go func() {
		_, err := a.Await(context.Background(), "session", "1")
		first <- err
	}()
	require.Eventually(t, func() bool { return fb.countPrefix("SpotifyFeed") > 0 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := a.Await(context.Background(), "session", "1")
		second <- err
	}()

	assert.True(t, errors.IsCancelled(<-first))

	mu.Lock()
	linked = true
	mu.Unlock()
	assert.NoError(t, <-second)
}

// ==================== 详情页 ====================

func seriesDetail() *model.VodDetailPayload {
	return &model.VodDetailPayload{
		SeriesID: "9",
		Title:    "시리즈",
		Trailer:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
}

func TestDetailService_SeriesCascade(t *testing.T) {
	fb := &fakeBackend{
		detail:   seriesDetail(),
		seasons:  []model.Season{{ID: "1", Number: 1}, {ID: "2", Number: 2}},
		episodes: map[string][]model.Episode{"1": {{ID: "11", Name: "1화"}}},
	}
	svc := NewDetailService(fb)

	view, err := svc.Load(context.Background(), "7", "100")
	require.NoError(t, err)

	assert.Equal(t, []string{"VodDetail 100 7", "Seasons 9 kids=false", "Episodes 1 kids=false"}, fb.Calls())
	require.NotNil(t, view.SelectedSeason)
	assert.Equal(t, "시즌 1", view.SelectedSeason.Label())
	assert.Len(t, view.Episodes, 1)
	assert.Equal(t, "dQw4w9WgXcQ", view.TrailerID)
	assert.True(t, view.HasSeasons())
}

func TestDetailService_KidsSeriesUsesKidsEndpoints(t *testing.T) {
	fb := &fakeBackend{
		detail:   &model.VodDetailPayload{KidsSeriesID: "30"},
		seasons:  []model.Season{{ID: "31", Number: 1}},
		episodes: map[string][]model.Episode{},
	}
	_, err := NewDetailService(fb).Load(context.Background(), "7", "100")
	require.NoError(t, err)
	assert.Equal(t, []string{"VodDetail 100 7", "Seasons 30 kids=true", "Episodes 31 kids=true"}, fb.Calls())
}

func TestDetailService_EmptySeasonsSkipsEpisodes(t *testing.T) {
	fb := &fakeBackend{detail: seriesDetail(), seasons: []model.Season{}}
	view, err := NewDetailService(fb).Load(context.Background(), "7", "100")
	require.NoError(t, err)

	assert.Equal(t, 0, fb.countPrefix("Episodes"))
	assert.False(t, view.HasSeasons())
	assert.Nil(t, view.SelectedSeason)
}

func TestDetailService_MovieSkipsSeasons(t *testing.T) {
	fb := &fakeBackend{detail: &model.VodDetailPayload{MovieID: "5", Trailer: "not a url"}}
	view, err := NewDetailService(fb).Load(context.Background(), "7", "5")
	require.NoError(t, err)

	assert.Equal(t, []string{"VodDetail 5 7"}, fb.Calls())
	assert.Empty(t, view.TrailerID, "unparsable trailer suppresses the player")
}

func TestDetailService_RelatedSampledToLimit(t *testing.T) {
	related := make([]model.VodSummary, 20)
	for i := range related {
		related[i] = model.VodSummary{ID: model.FlexID(fmt.Sprint(i))}
	}
	fb := &fakeBackend{detail: &model.VodDetailPayload{MovieID: "5", RecommendList: related}}

	view, err := NewDetailService(fb).Load(context.Background(), "7", "5")
	require.NoError(t, err)
	assert.Len(t, view.Related, RelatedLimit)
}

func TestDetailService_ToggleLikeTwiceRestoresState(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewDetailService(fb)

	liked, err := svc.ToggleLike(context.Background(), "7", "5", false)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(context.Background(), "7", "5", liked)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Equal(t, []string{"AddLike 7 5", "RemoveLike 7 5"}, fb.Calls())
}

func TestDetailService_ToggleLikeFailureKeepsState(t *testing.T) {
	fb := &fakeBackend{likeErr: errors.StatusError("/like/7", 500)}
	liked, err := NewDetailService(fb).ToggleLike(context.Background(), "7", "5", true)
	require.Error(t, err)
	assert.True(t, liked)
}

func TestDetailService_SubmitReviewValidation(t *testing.T) {
	fb := &fakeBackend{detail: &model.VodDetailPayload{MovieID: "5"}}
	svc := NewDetailService(fb)
	st := newTestState()

	cases := []struct{ comment, rating string }{
		{"", "5"},
		{"   ", "3"},
		{"좋아요", "0"},
		{"좋아요", "6"},
		{"좋아요", "abc"},
		{"좋아요", ""},
	}
	for _, c := range cases {
		_, err := svc.SubmitReview(context.Background(), st, "7", "5", c.comment, c.rating)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Contains(t, err.Error(), MsgReviewRequired)
	}
	assert.Empty(t, fb.Calls(), "no backend call on invalid input")
}

func TestDetailService_SubmitReviewRefetches(t *testing.T) {
	fb := &fakeBackend{detail: &model.VodDetailPayload{MovieID: "5"}}
	reviews, err := NewDetailService(fb).SubmitReview(context.Background(), newTestState(), "7", "5", "좋아요", "4")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, []string{"CreateReview 7 5", "VodDetail 5 7"}, fb.Calls())

	sent := fb.lastReview.(model.NewReview)
	assert.Equal(t, "4", sent.Rating)
}

// ==================== 评论 ====================

func TestReviewService_UpdateAndDelete(t *testing.T) {
	fb := &fakeBackend{reviews: []model.Review{
		{ID: "1", VodID: "5", Comment: "old", Rating: 2, UserName: "Alice"},
		{ID: "2", VodID: "6", Comment: "other", Rating: 3},
	}}
	svc := NewReviewService(fb)
	st := newTestState()

	_, err := svc.List(context.Background(), st, "7")
	require.NoError(t, err)

	reviews, err := svc.Update(context.Background(), st, "7", "1", "new", "5")
	require.NoError(t, err)
	assert.Equal(t, "new", reviews[0].Comment)

	sent := fb.lastReview.(model.Review)
	assert.Equal(t, "Alice", sent.UserName, "full review object is sent")
	assert.Equal(t, 5, sent.Rating.Int())

	reviews, err = svc.Delete(context.Background(), st, "7", "2")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	cached, ok := st.CachedReviews()
	require.True(t, ok)
	assert.Len(t, cached, 1, "cache overwritten after mutation")
}

func TestReviewService_DeleteRejectsForeignReview(t *testing.T) {
	fb := &fakeBackend{reviews: []model.Review{{ID: "1", VodID: "5", Comment: "mine"}}}
	svc := NewReviewService(fb)
	st := newTestState()

	_, err := svc.Delete(context.Background(), st, "7", "99")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetErrorCode(err))
	assert.Zero(t, fb.countPrefix("DeleteReview"), "unknown id never reaches the backend")
	assert.Equal(t, 1, fb.countPrefix("UserReviews"), "ownership resolved from the user's list")
}

func TestReviewService_UpdateRejectsBadRating(t *testing.T) {
	fb := &fakeBackend{reviews: []model.Review{{ID: "1"}}}
	_, err := NewReviewService(fb).Update(context.Background(), newTestState(), "7", "1", "text", "9")
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, fb.Calls())
}

// ==================== 搜索 ====================

func TestSearchService_PreviewBlankSkipsBackend(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewSearchService(fb, SearchByPath, 10, time.Minute)

	vods, err := svc.Preview(context.Background(), "s", "   ")
	require.NoError(t, err)
	assert.Empty(t, vods)
	assert.Empty(t, fb.Calls())
}

func TestSearchService_PreviewLimitAndCache(t *testing.T) {
	fb := &fakeBackend{search: make([]model.VodSummary, 9)}
	svc := NewSearchService(fb, SearchByPath, 10, time.Minute)

	vods, err := svc.Preview(context.Background(), "s", "해리")
	require.NoError(t, err)
	assert.Len(t, vods, PreviewLimit)

	_, err = svc.Preview(context.Background(), "s", "해리")
	require.NoError(t, err)
	assert.Equal(t, 1, fb.countPrefix("Search "), "second preview served from cache")
}

func TestSearchService_PreviewCollapsesConcurrent(t *testing.T) {
	fb := &fakeBackend{search: []model.VodSummary{{ID: "1"}}, searchWait: make(chan struct{})}
	svc := NewSearchService(fb, SearchByPath, 10, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Preview(context.Background(), fmt.Sprintf("s%d", i), "기생충")
		}()
	}
	require.Eventually(t, func() bool { return fb.countPrefix("Search ") == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fb.searchWait)
	wg.Wait()

	assert.Equal(t, 1, fb.countPrefix("Search "))
}

func TestSearchService_QueryMode(t *testing.T) {
	fb := &fakeBackend{search: []model.VodSummary{{ID: "1"}}}
	svc := NewSearchService(fb, SearchByQuery, 10, time.Minute)

	_, err := svc.Search(context.Background(), newTestState(), "기생충")
	require.NoError(t, err)
	assert.Equal(t, []string{"SearchVods 기생충"}, fb.Calls())
}

func TestSearchService_SearchHistory(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewSearchService(fb, SearchByPath, 10, time.Minute)
	st := newTestState()

	view, err := svc.Search(context.Background(), st, "없는영화")
	require.NoError(t, err)
	assert.Equal(t, MsgSearchEmpty, view.Message)
	require.Len(t, view.History, 1)

	for i := 0; i < 7; i++ {
		_, err := svc.Search(context.Background(), st, fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	history := svc.History(st)
	require.Len(t, history, model.MaxSearchHistory)
	assert.Equal(t, "q6", history[0].Keyword, "latest first")

	require.NoError(t, svc.ClearHistory(st))
	assert.Empty(t, svc.History(st))
}

func TestSearchService_FailureNotRecorded(t *testing.T) {
	fb := &fakeBackend{searchErr: errors.StatusError("/search/x", 500)}
	svc := NewSearchService(fb, SearchByPath, 10, time.Minute)
	st := newTestState()

	view, err := svc.Search(context.Background(), st, "x")
	require.Error(t, err)
	assert.Equal(t, MsgSearchFail, view.Message)
	assert.Empty(t, svc.History(st))
}
