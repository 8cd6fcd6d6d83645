package session_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/watchmix/watchmix/internal/events"
	"github.com/watchmix/watchmix/internal/session"
	"github.com/watchmix/watchmix/internal/session/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T) (*session.Session, *mocks.MockWatchlistFetcher, *mocks.MockAvailabilityFetcher, *events.Bus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	watchlists := mocks.NewMockWatchlistFetcher(ctrl)
	availability := mocks.NewMockAvailabilityFetcher(ctrl)
	bus := events.NewBus(testLogger())

	sess := session.New(watchlists, availability, bus, testLogger(),
		session.WithDebounce(5*time.Millisecond))
	t.Cleanup(func() {
		sess.Close()
		bus.Close()
	})
	return sess, watchlists, availability, bus
}

func watchlistOf(ids ...string) []session.Title {
	titles := make([]session.Title, len(ids))
	for i, id := range ids {
		titles[i] = session.Title{ID: id, Name: "Movie " + id, Slug: "movie-" + id}
	}
	return titles
}

func subscriptionOn(service string) []session.Option {
	return []session.Option{{ServiceID: service, Kind: session.KindSubscription}}
}

func TestSession_SubmitQuery_NoUsernames(t *testing.T) {
	sess, _, _, _ := newTestSession(t)

	_, err := sess.SubmitQuery(context.Background(), nil)
	assert.ErrorIs(t, err, session.ErrInvalidInput)

	_, err = sess.SubmitQuery(context.Background(), []string{"  ", ""})
	assert.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestSession_SubmitQuery_ResolvesAvailability(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A", "B"), nil)
	watchlists.EXPECT().Watchlist(gomock.Any(), "bob").Return(watchlistOf("B", "C"), nil)

	availability.EXPECT().Availability(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, titleID string) ([]session.Option, error) {
			if titleID == "B" {
				return []session.Option{
					{ServiceID: "netflix", Kind: session.KindSubscription},
					{ServiceID: "prime", Kind: session.KindRent},
				}, nil
			}
			return subscriptionOn("netflix"), nil
		}).Times(3)

	gen, err := sess.SubmitQuery(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 3, "merged collection is visible before availability resolves")

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	snap = sess.Snapshot()
	assert.Equal(t, []string{"alice", "bob"}, snap.Usernames)
	assert.Empty(t, snap.UserErrors)

	// B has two options and ranks first; A and C tie and keep merge order.
	require.Len(t, snap.Titles, 3)
	assert.Equal(t, "B", snap.Titles[0].ID)
	assert.Equal(t, 2, snap.Titles[0].Score)
	assert.Equal(t, "A", snap.Titles[1].ID)
	assert.Equal(t, "C", snap.Titles[2].ID)

	for _, rt := range snap.Titles {
		assert.Equal(t, session.StatusSuccess, rt.State.Status)
		assert.Equal(t, gen, rt.State.Generation)
	}
}

func TestSession_AvailabilityNotFound_ResolvesEmpty(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A"), nil)
	availability.EXPECT().Availability(gomock.Any(), "A").
		Return(nil, fmt.Errorf("%w: no streaming data", session.ErrNotFound))

	_, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 1)
	state := snap.Titles[0].State
	assert.Equal(t, session.StatusSuccess, state.Status, "unavailable is not an error")
	assert.NotNil(t, state.Options)
	assert.Empty(t, state.Options)
	assert.Empty(t, state.Err)
}

func TestSession_AvailabilityErrorIsolatedPerTitle(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("good", "bad"), nil)
	availability.EXPECT().Availability(gomock.Any(), "good").Return(subscriptionOn("netflix"), nil)
	availability.EXPECT().Availability(gomock.Any(), "bad").
		Return(nil, fmt.Errorf("%w: upstream 503", session.ErrUpstreamUnavailable))

	_, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	snap := sess.Snapshot()
	states := statesByID(snap)

	assert.Equal(t, session.StatusSuccess, states["good"].Status)
	assert.Equal(t, session.StatusError, states["bad"].Status)
	assert.Contains(t, states["bad"].Err, "upstream 503")
}

func TestSession_FailedUserDoesNotAbortQuery(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A"), nil)
	watchlists.EXPECT().Watchlist(gomock.Any(), "ghost").
		Return(nil, fmt.Errorf("%w: watchlist not found", session.ErrNotFound))
	availability.EXPECT().Availability(gomock.Any(), "A").Return(subscriptionOn("netflix"), nil)

	_, err := sess.SubmitQuery(context.Background(), []string{"alice", "ghost"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 1)
	assert.Equal(t, session.StatusSuccess, snap.Titles[0].State.Status)
	require.Len(t, snap.UserErrors, 1)
	assert.Equal(t, "ghost", snap.UserErrors[0].Username)
}

func TestSession_NewQuerySupersedesInFlightFetches(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("old"), nil)
	watchlists.EXPECT().Watchlist(gomock.Any(), "bob").Return(watchlistOf("new"), nil)

	release := make(chan struct{})
	started := make(chan struct{})
	availability.EXPECT().Availability(gomock.Any(), "old").
		DoAndReturn(func(context.Context, string) ([]session.Option, error) {
			close(started)
			<-release
			// A stale success: the session must drop it, not install it.
			return subscriptionOn("netflix"), nil
		})
	availability.EXPECT().Availability(gomock.Any(), "new").Return(subscriptionOn("prime"), nil)

	gen1, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first generation fetch never started")
	}

	gen2, err := sess.SubmitQuery(context.Background(), []string{"bob"})
	require.NoError(t, err)
	assert.Greater(t, gen2, gen1)

	close(release)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	// Give the stale write a chance to land before checking it did not.
	time.Sleep(50 * time.Millisecond)

	snap := sess.Snapshot()
	assert.Equal(t, gen2, snap.Generation)
	require.Len(t, snap.Titles, 1)
	assert.Equal(t, "new", snap.Titles[0].ID)
	assert.Equal(t, gen2, snap.Titles[0].State.Generation)
}

func TestSession_UpdateFiltersReranksView(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("rental", "flat"), nil)
	availability.EXPECT().Availability(gomock.Any(), "rental").
		Return([]session.Option{
			{ServiceID: "apple", Kind: session.KindRent},
			{ServiceID: "prime", Kind: session.KindRent},
		}, nil)
	availability.EXPECT().Availability(gomock.Any(), "flat").
		Return(subscriptionOn("netflix"), nil)

	_, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 2)
	assert.Equal(t, "rental", snap.Titles[0].ID, "two rent options beat one subscription")

	sess.UpdateFilters(session.FilterSelection{SubscriptionOnly: true})

	snap = sess.Snapshot()
	require.Len(t, snap.Titles, 2)
	assert.Equal(t, "flat", snap.Titles[0].ID)
	assert.Equal(t, 1, snap.Titles[0].Score)
	assert.Equal(t, 0, snap.Titles[1].Score)
	assert.True(t, snap.Filters.SubscriptionOnly)
}

func TestSession_IntersectFilterHidesUnsharedTitles(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A", "B"), nil)
	watchlists.EXPECT().Watchlist(gomock.Any(), "bob").Return(watchlistOf("B", "C"), nil)
	availability.EXPECT().Availability(gomock.Any(), gomock.Any()).
		Return(subscriptionOn("netflix"), nil).Times(3)

	_, err := sess.SubmitQuery(context.Background(), []string{"alice", "bob"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return allResolved(sess.Snapshot())
	}, 2*time.Second, 10*time.Millisecond)

	sess.UpdateFilters(session.FilterSelection{Intersect: true})
	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 1)
	assert.Equal(t, "B", snap.Titles[0].ID)

	sess.UpdateFilters(session.FilterSelection{})
	snap = sess.Snapshot()
	assert.Len(t, snap.Titles, 3, "intersect off restores the union view")
}

func TestSession_PublishesLifecycleEvents(t *testing.T) {
	sess, watchlists, availability, bus := newTestSession(t)

	queryStarted := bus.Subscribe(events.TypeQueryStarted, 4)
	titleUpdated := bus.Subscribe(events.TypeTitleUpdated, 4)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A"), nil)
	availability.EXPECT().Availability(gomock.Any(), "A").Return(subscriptionOn("netflix"), nil)

	gen, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	select {
	case e := <-queryStarted:
		started, ok := e.(events.QueryStarted)
		require.True(t, ok)
		assert.Equal(t, gen, started.Generation)
		assert.Equal(t, []string{"alice"}, started.Usernames)
	case <-time.After(2 * time.Second):
		t.Fatal("no query.started event")
	}

	select {
	case e := <-titleUpdated:
		updated, ok := e.(events.TitleUpdated)
		require.True(t, ok)
		assert.Equal(t, "A", updated.EntityID())
		assert.Equal(t, string(session.StatusSuccess), updated.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("no title.updated event")
	}
}

func TestSession_ContextCancelledFetchLeavesLoading(t *testing.T) {
	sess, watchlists, availability, _ := newTestSession(t)

	watchlists.EXPECT().Watchlist(gomock.Any(), "alice").Return(watchlistOf("A"), nil)

	fetched := make(chan struct{})
	availability.EXPECT().Availability(gomock.Any(), "A").
		DoAndReturn(func(context.Context, string) ([]session.Option, error) {
			defer close(fetched)
			return nil, context.Canceled
		})

	_, err := sess.SubmitQuery(context.Background(), []string{"alice"})
	require.NoError(t, err)

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("availability fetch never ran")
	}
	time.Sleep(20 * time.Millisecond)

	snap := sess.Snapshot()
	require.Len(t, snap.Titles, 1)
	assert.Equal(t, session.StatusLoading, snap.Titles[0].State.Status,
		"cancelled fetch must not flip the state")
	assert.Empty(t, snap.Titles[0].State.Err)
}

func allResolved(snap session.Snapshot) bool {
	if len(snap.Titles) == 0 {
		return false
	}
	for _, rt := range snap.Titles {
		if rt.State.Status == session.StatusLoading || rt.State.Status == session.StatusIdle {
			return false
		}
	}
	return true
}

func statesByID(snap session.Snapshot) map[string]session.TitleState {
	states := make(map[string]session.TitleState, len(snap.Titles))
	for _, rt := range snap.Titles {
		states[rt.ID] = rt.State
	}
	return states
}
