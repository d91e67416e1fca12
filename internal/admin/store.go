// Package admin holds the newsletter admin state store: the single source
// of truth for list filters, pagination, selection, the recently-deleted
// buffer, and the orchestration of backend calls behind them.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dnbdoctor/labelops/internal/apiclient"
	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/debounce"
	"github.com/dnbdoctor/labelops/internal/pkg/logger"
)

// ErrEmailRequired is returned when the add-subscriber form has no email.
var ErrEmailRequired = errors.New("email is required")

// Backend is the slice of the API client the store drives. *apiclient.Client
// satisfies it.
type Backend interface {
	ListSubscribers(ctx context.Context, p apiclient.ListParams) (*apiclient.SubscriberList, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateSubscriber(ctx context.Context, in apiclient.CreateSubscriberInput) (*domain.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string, soft bool) error
}

// Options tune store behavior. Zero values fall back to defaults.
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	UndoExpiry     time.Duration
	UndoSweep      time.Duration
}

// Store is the newsletter admin state container. All mutation goes through
// its methods; Snapshot exposes a read-only copy for rendering and tests.
type Store struct {
	mu      sync.Mutex
	backend Backend

	debouncer *debounce.Debouncer
	undo      *UndoBuffer

	// baseCtx backs debounced and background work started outside a caller's
	// request scope.
	baseCtx context.Context

	searchInput string // raw text, updated per keystroke
	searchTerm  string // committed after the debounce window

	filterStatus    string
	filterCategory  string
	showSoftDeleted bool

	page     int
	pageSize int

	subscribers []domain.Subscriber
	categories  []domain.Category
	stats       domain.SubscriberStats
	totalPages  int
	totalCount  int

	selected map[string]bool

	loading     bool
	listLoading bool
	fetchGen    uint64

	form             apiclient.CreateSubscriberInput
	showUpdateOption bool
}

// NewStore creates a store. Close must be called to stop the undo sweep.
func NewStore(ctx context.Context, backend Backend, opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = 25
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 300 * time.Millisecond
	}
	if opts.UndoExpiry <= 0 {
		opts.UndoExpiry = 30 * time.Second
	}
	if opts.UndoSweep <= 0 {
		opts.UndoSweep = 5 * time.Second
	}
	return &Store{
		backend:   backend,
		debouncer: debounce.New(opts.SearchDebounce),
		undo:      NewUndoBuffer(opts.UndoExpiry, opts.UndoSweep),
		baseCtx:   ctx,
		page:      1,
		pageSize:  opts.PageSize,
		selected:  make(map[string]bool),
	}
}

// Close stops background work owned by the store.
func (s *Store) Close() {
	s.debouncer.Stop()
	s.undo.Close()
}

// View is a read-only snapshot of the store state.
type View struct {
	Subscribers []domain.Subscriber
	Categories  []domain.Category
	Stats       domain.SubscriberStats

	Page       int
	PageSize   int
	TotalPages int
	TotalCount int

	SearchInput     string
	SearchTerm      string
	FilterStatus    string
	FilterCategory  string
	ShowSoftDeleted bool

	Selected []string

	Loading     bool
	ListLoading bool

	Form             apiclient.CreateSubscriberInput
	ShowUpdateOption bool

	RecentlyDeleted []DeletedEntry
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]string, 0, len(s.selected))
	for id := range s.selected {
		selected = append(selected, id)
	}
	sort.Strings(selected)

	return View{
		Subscribers:      append([]domain.Subscriber(nil), s.subscribers...),
		Categories:       append([]domain.Category(nil), s.categories...),
		Stats:            s.stats,
		Page:             s.page,
		PageSize:         s.pageSize,
		TotalPages:       s.totalPages,
		TotalCount:       s.totalCount,
		SearchInput:      s.searchInput,
		SearchTerm:       s.searchTerm,
		FilterStatus:     s.filterStatus,
		FilterCategory:   s.filterCategory,
		ShowSoftDeleted:  s.showSoftDeleted,
		Selected:         selected,
		Loading:          s.loading,
		ListLoading:      s.listLoading,
		Form:             s.form,
		ShowUpdateOption: s.showUpdateOption,
		RecentlyDeleted:  s.undo.Entries(),
	}
}

// SetSearchTerm records raw text immediately and commits it as the
// effective search term once typing quiesces. Only the final value of a
// keystroke burst triggers a fetch, as a background refresh.
func (s *Store) SetSearchTerm(text string) {
	s.mu.Lock()
	s.searchInput = text
	s.mu.Unlock()

	s.debouncer.Do(func() {
		s.mu.Lock()
		s.searchTerm = text
		s.page = 1
		s.mu.Unlock()
		if err := s.FetchData(s.baseCtx, true); err != nil {
			logger.Warn("search refetch failed", "error", err)
		}
	})
}

// SetFilterStatus updates the status filter, resets to page 1, and
// refetches.
func (s *Store) SetFilterStatus(ctx context.Context, status string) error {
	s.mu.Lock()
	s.filterStatus = status
	s.page = 1
	s.mu.Unlock()
	return s.FetchData(ctx, false)
}

// SetFilterCategory updates the category filter, resets to page 1, and
// refetches.
func (s *Store) SetFilterCategory(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	s.filterCategory = categoryID
	s.page = 1
	s.mu.Unlock()
	return s.FetchData(ctx, false)
}

// SetShowSoftDeleted toggles soft-deleted visibility, resets to page 1, and
// refetches.
func (s *Store) SetShowSoftDeleted(ctx context.Context, show bool) error {
	s.mu.Lock()
	s.showSoftDeleted = show
	s.page = 1
	s.mu.Unlock()
	return s.FetchData(ctx, false)
}

// SetPage moves to the given page and refetches.
func (s *Store) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return s.FetchData(ctx, false)
}

// SetPageSize changes the page size, resets to page 1, and refetches.
func (s *Store) SetPageSize(ctx context.Context, size int) error {
	s.mu.Lock()
	if size > 0 {
		s.pageSize = size
	}
	s.page = 1
	s.mu.Unlock()
	return s.FetchData(ctx, false)
}

// FetchData loads the current page of subscribers and the category list in
// parallel. A background refresh uses the lighter list-only loading flag so
// debounced searches do not flash the full-page indicator. Results from a
// fetch that has been superseded by a newer one are discarded. On error the
// previously loaded data is left untouched.
func (s *Store) FetchData(ctx context.Context, background bool) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	if background {
		s.listLoading = true
	} else {
		s.loading = true
	}
	params := apiclient.ListParams{
		Search:          s.searchTerm,
		Status:          s.filterStatus,
		CategoryID:      s.filterCategory,
		ShowSoftDeleted: s.showSoftDeleted,
		Page:            s.page,
		PageSize:        s.pageSize,
	}
	s.mu.Unlock()

	var (
		list *apiclient.SubscriberList
		cats []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.backend.ListSubscribers(gctx, params)
		return err
	})
	g.Go(func() error {
		// Category refresh is best effort; a failure keeps the old list.
		var err error
		if cats, err = s.backend.ListCategories(gctx); err != nil {
			logger.Warn("category refresh failed", "error", err)
			cats = nil
		}
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		// A newer fetch owns the loading flags and the data now.
		return nil
	}
	s.loading = false
	s.listLoading = false
	if err != nil {
		return fmt.Errorf("fetch subscribers: %w", err)
	}

	s.subscribers = list.Subscribers
	s.totalPages = list.Pagination.TotalPages
	s.totalCount = list.Pagination.TotalCount
	s.stats = list.Stats
	if cats != nil {
		s.categories = cats
	}
	return nil
}

// ToggleSelect toggles one subscriber in the selection set.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
}

// ToggleSelectAll selects every subscriber on the current page, or clears
// the selection if they are all already selected.
func (s *Store) ToggleSelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := len(s.subscribers) > 0
	for _, sub := range s.subscribers {
		if !s.selected[sub.ID] {
			all = false
			break
		}
	}
	if all {
		s.selected = make(map[string]bool)
		return
	}
	s.selected = make(map[string]bool, len(s.subscribers))
	for _, sub := range s.subscribers {
		s.selected[sub.ID] = true
	}
}

// DeleteSubscriber soft-deletes one subscriber, snapshots it into the
// recently-deleted buffer, drops it from the selection, and refetches.
func (s *Store) DeleteSubscriber(ctx context.Context, id string) error {
	s.mu.Lock()
	var snapshot *domain.Subscriber
	for i := range s.subscribers {
		if s.subscribers[i].ID == id {
			sub := s.subscribers[i]
			snapshot = &sub
			break
		}
	}
	s.mu.Unlock()

	if err := s.backend.DeleteSubscriber(ctx, id, true); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}

	if snapshot != nil {
		s.undo.Add(*snapshot)
	}
	s.mu.Lock()
	delete(s.selected, id)
	s.mu.Unlock()

	return s.FetchData(ctx, true)
}

// BulkDelete deletes every selected subscriber concurrently and reports the
// number of failures. Deletions that succeeded stay deleted regardless of
// other failures.
func (s *Store) BulkDelete(ctx context.Context) (failed int, err error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	snapshots := make(map[string]domain.Subscriber)
	for _, sub := range s.subscribers {
		if s.selected[sub.ID] {
			snapshots[sub.ID] = sub
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}

	var failures atomic.Int64
	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.backend.DeleteSubscriber(ctx, id, true); err != nil {
				failures.Add(1)
				logger.Warn("bulk delete failed", "id", id, "error", err)
				return
			}
			if snap, ok := snapshots[id]; ok {
				s.undo.Add(snap)
			}
			s.mu.Lock()
			delete(s.selected, id)
			s.mu.Unlock()
		}()
	}
	wg.Wait()

	if err := s.FetchData(ctx, true); err != nil {
		return int(failures.Load()), err
	}
	return int(failures.Load()), nil
}

// UndoDelete re-creates a recently deleted subscriber from its snapshot and
// removes the buffer entry. The restored record gets a fresh id; email,
// name, tags, category, and notes carry over.
func (s *Store) UndoDelete(ctx context.Context, subscriberID string) error {
	entry, ok := s.undo.Take(subscriberID)
	if !ok {
		return fmt.Errorf("no undo entry for subscriber %s", subscriberID)
	}

	snap := entry.Subscriber
	in := apiclient.CreateSubscriberInput{
		Email: snap.Email,
		Name:  snap.Name,
		Tags:  snap.Tags,
		Notes: snap.Notes,
	}
	if snap.CategoryID != nil {
		in.CategoryID = *snap.CategoryID
	}
	if _, err := s.backend.CreateSubscriber(ctx, in); err != nil {
		// Put the entry back so the operator can retry within the window.
		s.undo.Add(snap)
		return fmt.Errorf("undo delete: %w", err)
	}

	return s.FetchData(ctx, true)
}

// SetForm replaces the add-subscriber form state.
func (s *Store) SetForm(form apiclient.CreateSubscriberInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	s.showUpdateOption = false
}

// SubmitAdd creates a subscriber from the current form. On an email
// conflict the form is preserved and the update-existing option is offered
// instead of failing outright.
func (s *Store) SubmitAdd(ctx context.Context) error {
	s.mu.Lock()
	form := s.form
	s.mu.Unlock()

	if form.Email == "" {
		return ErrEmailRequired
	}

	_, err := s.backend.CreateSubscriber(ctx, form)
	if err != nil {
		var conflict *apiclient.ConflictError
		if errors.As(err, &conflict) {
			s.mu.Lock()
			s.showUpdateOption = true
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	s.form = apiclient.CreateSubscriberInput{}
	s.showUpdateOption = false
	s.mu.Unlock()
	return s.FetchData(ctx, true)
}

// UpdateExisting resubmits the current form against the already existing
// subscriber matched by email.
func (s *Store) UpdateExisting(ctx context.Context) error {
	s.mu.Lock()
	form := s.form
	form.UpdateExisting = true
	s.mu.Unlock()

	if form.Email == "" {
		return ErrEmailRequired
	}
	if _, err := s.backend.CreateSubscriber(ctx, form); err != nil {
		return fmt.Errorf("update existing: %w", err)
	}

	s.mu.Lock()
	s.form = apiclient.CreateSubscriberInput{}
	s.showUpdateOption = false
	s.mu.Unlock()
	return s.FetchData(ctx, true)
}
