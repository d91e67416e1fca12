package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnbdoctor/labelops/internal/admin"
	"github.com/dnbdoctor/labelops/internal/apiclient"
	"github.com/dnbdoctor/labelops/internal/domain"
)

type fakeBackend struct {
	mu        sync.Mutex
	listCalls []apiclient.ListParams

	listFn   func(p apiclient.ListParams) (*apiclient.SubscriberList, error)
	createFn func(in apiclient.CreateSubscriberInput) (*domain.Subscriber, error)
	deleteFn func(id string, soft bool) error

	categories []domain.Category
}

func listOf(subs ...domain.Subscriber) *apiclient.SubscriberList {
	return &apiclient.SubscriberList{
		Success:     true,
		Subscribers: subs,
		Pagination:  apiclient.Pagination{Page: 1, TotalPages: 1, TotalCount: len(subs)},
		Stats:       domain.SubscriberStats{TotalSubscribers: len(subs)},
	}
}

func (f *fakeBackend) ListSubscribers(_ context.Context, p apiclient.ListParams) (*apiclient.SubscriberList, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, p)
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(p)
	}
	return listOf(), nil
}

func (f *fakeBackend) calls() []apiclient.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.ListParams(nil), f.listCalls...)
}

func (f *fakeBackend) ListCategories(context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeBackend) CreateSubscriber(_ context.Context, in apiclient.CreateSubscriberInput) (*domain.Subscriber, error) {
	if f.createFn != nil {
		return f.createFn(in)
	}
	return &domain.Subscriber{ID: "new", Email: in.Email}, nil
}

func (f *fakeBackend) DeleteSubscriber(_ context.Context, id string, soft bool) error {
	if f.deleteFn != nil {
		return f.deleteFn(id, soft)
	}
	return nil
}

func newTestStore(t *testing.T, fb *fakeBackend) *admin.Store {
	t.Helper()
	s := admin.NewStore(context.Background(), fb, admin.Options{
		PageSize:       25,
		SearchDebounce: 30 * time.Millisecond,
		UndoExpiry:     time.Minute,
		UndoSweep:      time.Minute,
	})
	t.Cleanup(s.Close)
	return s
}

func TestSearchDebounceFiresOnceWithFinalTerm(t *testing.T) {
	fb := &fakeBackend{}
	s := newTestStore(t, fb)

	for _, term := range []string{"n", "ne", "neu", "neuro"} {
		s.SetSearchTerm(term)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(fb.calls()) == 1
	}, time.Second, 10*time.Millisecond)

	calls := fb.calls()
	assert.Equal(t, "neuro", calls[0].Search)
	assert.Equal(t, 1, calls[0].Page)

	// Quiet period: no further fetches.
	time.Sleep(80 * time.Millisecond)
	assert.Len(t, fb.calls(), 1)
	assert.Equal(t, "neuro", s.Snapshot().SearchTerm)
}

func TestFilterChangesResetToPageOne(t *testing.T) {
	fb := &fakeBackend{}
	s := newTestStore(t, fb)
	ctx := context.Background()

	require.NoError(t, s.SetPage(ctx, 4))
	require.NoError(t, s.SetFilterStatus(ctx, "ACTIVE"))
	require.NoError(t, s.SetPage(ctx, 4))
	require.NoError(t, s.SetFilterCategory(ctx, "cat-1"))
	require.NoError(t, s.SetPage(ctx, 4))
	require.NoError(t, s.SetShowSoftDeleted(ctx, true))
	require.NoError(t, s.SetPage(ctx, 4))
	require.NoError(t, s.SetPageSize(ctx, 50))

	calls := fb.calls()
	require.Len(t, calls, 8)
	for i, call := range calls {
		if i%2 == 0 {
			assert.Equal(t, 4, call.Page, "call %d", i)
		} else {
			assert.Equal(t, 1, call.Page, "filter change %d must reset to page 1", i)
		}
	}
	assert.Equal(t, 50, calls[7].PageSize)
}

func TestStaleFetchResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{}
	fb.listFn = func(p apiclient.ListParams) (*apiclient.SubscriberList, error) {
		if p.Page == 1 {
			<-release
			return listOf(domain.Subscriber{ID: "stale", Email: "stale@x.com"}), nil
		}
		return listOf(domain.Subscriber{ID: "fresh", Email: "fresh@x.com"}), nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchData(ctx, false) // page 1, blocks until released
	}()

	require.Eventually(t, func() bool { return len(fb.calls()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.SetPage(ctx, 2))

	close(release)
	wg.Wait()

	v := s.Snapshot()
	require.Len(t, v.Subscribers, 1)
	assert.Equal(t, "fresh", v.Subscribers[0].ID, "older fetch must not overwrite newer result")
	assert.False(t, v.Loading)
	assert.False(t, v.ListLoading)
}

func TestFetchErrorLeavesDataUnchanged(t *testing.T) {
	fb := &fakeBackend{}
	fb.listFn = func(p apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return listOf(domain.Subscriber{ID: "s1", Email: "a@x.com"}), nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()

	require.NoError(t, s.FetchData(ctx, false))
	require.Len(t, s.Snapshot().Subscribers, 1)

	fb.mu.Lock()
	fb.listFn = func(apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return nil, errors.New("boom")
	}
	fb.mu.Unlock()

	assert.Error(t, s.FetchData(ctx, false))
	v := s.Snapshot()
	assert.Len(t, v.Subscribers, 1, "prior data must survive a failed fetch")
	assert.False(t, v.Loading)
	assert.False(t, v.ListLoading)
}

func TestToggleSelectAllIsIdempotentToggle(t *testing.T) {
	fb := &fakeBackend{}
	fb.listFn = func(apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return listOf(
			domain.Subscriber{ID: "s1"}, domain.Subscriber{ID: "s2"}, domain.Subscriber{ID: "s3"},
		), nil
	}
	s := newTestStore(t, fb)
	require.NoError(t, s.FetchData(context.Background(), false))

	s.ToggleSelect("s2")
	s.ToggleSelectAll()
	assert.Equal(t, []string{"s1", "s2", "s3"}, s.Snapshot().Selected)

	s.ToggleSelectAll()
	assert.Empty(t, s.Snapshot().Selected)
}

func TestDeleteSnapshotsAndDropsSelection(t *testing.T) {
	fb := &fakeBackend{}
	fb.listFn = func(apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return listOf(domain.Subscriber{ID: "s1", Email: "a@x.com", Name: "A"}), nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()
	require.NoError(t, s.FetchData(ctx, false))
	s.ToggleSelect("s1")

	var gotSoft bool
	fb.deleteFn = func(id string, soft bool) error {
		gotSoft = soft
		return nil
	}
	require.NoError(t, s.DeleteSubscriber(ctx, "s1"))

	assert.True(t, gotSoft, "store deletes are soft by default")
	v := s.Snapshot()
	assert.Empty(t, v.Selected)
	require.Len(t, v.RecentlyDeleted, 1)
	assert.Equal(t, "a@x.com", v.RecentlyDeleted[0].Subscriber.Email)
}

func TestDeleteThenUndoRoundTrip(t *testing.T) {
	cat := "cat-1"
	fb := &fakeBackend{}
	fb.listFn = func(apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return listOf(domain.Subscriber{
			ID: "s1", Email: "a@x.com", Name: "A",
			Tags: []string{"vip"}, Notes: "notes", CategoryID: &cat,
		}), nil
	}
	var created apiclient.CreateSubscriberInput
	fb.createFn = func(in apiclient.CreateSubscriberInput) (*domain.Subscriber, error) {
		created = in
		return &domain.Subscriber{ID: "s1-new", Email: in.Email}, nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()
	require.NoError(t, s.FetchData(ctx, false))

	require.NoError(t, s.DeleteSubscriber(ctx, "s1"))
	require.NoError(t, s.UndoDelete(ctx, "s1"))

	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "A", created.Name)
	assert.Equal(t, []string{"vip"}, created.Tags)
	assert.Equal(t, "cat-1", created.CategoryID)
	assert.Equal(t, "notes", created.Notes)
	assert.Empty(t, s.Snapshot().RecentlyDeleted, "undo must remove the buffer entry")
}

func TestBulkDeletePartialFailure(t *testing.T) {
	fb := &fakeBackend{}
	fb.listFn = func(apiclient.ListParams) (*apiclient.SubscriberList, error) {
		return listOf(
			domain.Subscriber{ID: "s1"}, domain.Subscriber{ID: "s2"}, domain.Subscriber{ID: "s3"},
		), nil
	}
	fb.deleteFn = func(id string, soft bool) error {
		if id == "s2" {
			return errors.New("backend unavailable")
		}
		return nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()
	require.NoError(t, s.FetchData(ctx, false))
	s.ToggleSelectAll()

	failed, err := s.BulkDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	v := s.Snapshot()
	assert.Equal(t, []string{"s2"}, v.Selected, "failed delete stays selected")
	assert.Len(t, v.RecentlyDeleted, 2)
}

func TestAddDuplicateOffersUpdateAndKeepsForm(t *testing.T) {
	fb := &fakeBackend{}
	fb.createFn = func(in apiclient.CreateSubscriberInput) (*domain.Subscriber, error) {
		if !in.UpdateExisting {
			return nil, &apiclient.ConflictError{ExistingEmail: in.Email, Status: "ACTIVE"}
		}
		return &domain.Subscriber{ID: "s1", Email: in.Email}, nil
	}
	s := newTestStore(t, fb)
	ctx := context.Background()

	form := apiclient.CreateSubscriberInput{Email: "taken@x.com", Name: "Taken", Tags: []string{"vip"}}
	s.SetForm(form)

	err := s.SubmitAdd(ctx)
	var conflict *apiclient.ConflictError
	require.True(t, errors.As(err, &conflict))

	v := s.Snapshot()
	assert.True(t, v.ShowUpdateOption)
	assert.Equal(t, form, v.Form, "conflict must not clear the form")

	require.NoError(t, s.UpdateExisting(ctx))
	v = s.Snapshot()
	assert.False(t, v.ShowUpdateOption)
	assert.Empty(t, v.Form.Email)
}

func TestSubmitAddRequiresEmail(t *testing.T) {
	s := newTestStore(t, &fakeBackend{})
	s.SetForm(apiclient.CreateSubscriberInput{Name: "No Email"})
	assert.ErrorIs(t, s.SubmitAdd(context.Background()), admin.ErrEmailRequired)
}
