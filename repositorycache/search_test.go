package repositorycache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-service-core/pkg/testsupport"
	"github.com/goliatone/go-service-core/repositorycache"
)

type searchFixture struct {
	repo  *repositorycache.CachedSearchRepository[*testsupport.Widget, testsupport.WidgetQuery]
	store *testsupport.CountingSearchRepository[*testsupport.Widget, testsupport.WidgetQuery]
}

func newSearchFixture(t *testing.T, opts ...repositorycache.Option) *searchFixture {
	t.Helper()

	_, widgets := testsupport.NewWidgetStore()
	store := testsupport.NewCountingSearchRepository[*testsupport.Widget, testsupport.WidgetQuery](widgets,
		func(ctx context.Context, q testsupport.WidgetQuery) ([]*testsupport.Widget, error) {
			return widgets.Filter(ctx, func(w *testsupport.Widget) bool {
				if q.Name != "" && !strings.Contains(w.Name, strings.TrimSpace(q.Name)) {
					return false
				}
				return q.MinPrice == nil || w.Price >= *q.MinPrice
			})
		})
	client, _ := testsupport.NewFlakyClient(t)

	return &searchFixture{
		repo:  repositorycache.NewSearch[*testsupport.Widget, testsupport.WidgetQuery](store, client, "svc", opts...),
		store: store,
	}
}

func intPtr(v int) *int { return &v }

func TestCachedSearchRepository_KeyDeterminism(t *testing.T) {
	f := newSearchFixture(t)

	a := testsupport.WidgetQuery{Name: "lamp", MinPrice: intPtr(5), Take: 20}
	b := testsupport.WidgetQuery{Take: 20, MinPrice: intPtr(5), Name: "  lamp "}

	if f.repo.SearchKey(a) != f.repo.SearchKey(b) {
		t.Fatalf("expected equal keys, got %q and %q", f.repo.SearchKey(a), f.repo.SearchKey(b))
	}
	if !strings.HasPrefix(f.repo.SearchKey(a), "svc:widget:search:") {
		t.Fatalf("unexpected search key %q", f.repo.SearchKey(a))
	}
	if !strings.HasPrefix(f.repo.CountKey(a), "svc:widget:count:") {
		t.Fatalf("unexpected count key %q", f.repo.CountKey(a))
	}

	c := a
	c.Skip = 20
	if f.repo.SearchKey(a) == f.repo.SearchKey(c) {
		t.Fatal("expected paging to change the key")
	}

	d := a
	d.Tags = []string{"desk"}
	if f.repo.SearchKey(a) == f.repo.SearchKey(d) {
		t.Fatal("expected tags to change the key")
	}
}

func TestCachedSearchRepository_CachesResults(t *testing.T) {
	ctx := context.Background()
	f := newSearchFixture(t)

	if _, err := f.repo.AddRange(ctx, []*testsupport.Widget{
		testsupport.NewWidget("desk lamp", 30),
		testsupport.NewWidget("floor lamp", 80),
		testsupport.NewWidget("chair", 50),
	}); err != nil {
		t.Fatal(err)
	}

	q := testsupport.WidgetQuery{Name: "lamp", MinPrice: intPtr(50)}
	for i := 0; i < 3; i++ {
		items, err := f.repo.Search(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 || items[0].Name != "floor lamp" {
			t.Fatalf("unexpected results %+v", items)
		}
	}
	if calls := f.store.Calls("Search"); calls != 1 {
		t.Fatalf("expected 1 store search, got %d", calls)
	}

	for i := 0; i < 2; i++ {
		n, err := f.repo.SearchCount(ctx, q)
		if err != nil || n != 1 {
			t.Fatalf("expected count 1, got %d (%v)", n, err)
		}
	}
	if calls := f.store.Calls("SearchCount"); calls != 1 {
		t.Fatalf("expected 1 store count, got %d", calls)
	}

	if _, err := f.repo.Search(ctx, testsupport.WidgetQuery{Name: "chair"}); err != nil {
		t.Fatal(err)
	}
	if calls := f.store.Calls("Search"); calls != 2 {
		t.Fatalf("expected a different query to miss, got %d", calls)
	}
}

func TestCachedSearchRepository_WritesDoNotInvalidateSearches(t *testing.T) {
	ctx := context.Background()
	f := newSearchFixture(t, repositorycache.WithSearchTTL(50*time.Millisecond))

	if _, err := f.repo.Create(ctx, testsupport.NewWidget("desk lamp", 30)); err != nil {
		t.Fatal(err)
	}

	q := testsupport.WidgetQuery{Name: "lamp"}
	if _, err := f.repo.Search(ctx, q); err != nil {
		t.Fatal(err)
	}

	if _, err := f.repo.Create(ctx, testsupport.NewWidget("floor lamp", 80)); err != nil {
		t.Fatal(err)
	}

	stale, err := f.repo.Search(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected the cached result within the search ttl, got %d items", len(stale))
	}

	time.Sleep(70 * time.Millisecond)

	fresh, err := f.repo.Search(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected staleness to heal after the search ttl, got %d items", len(fresh))
	}
	if calls := f.store.Calls("Search"); calls != 2 {
		t.Fatalf("expected 2 store searches, got %d", calls)
	}
}

func TestCachedSearchRepository_CRUDStillCached(t *testing.T) {
	ctx := context.Background()
	f := newSearchFixture(t)

	w, err := f.repo.Create(ctx, testsupport.NewWidget("lamp", 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.GetByID(ctx, w.ID); err != nil {
		t.Fatal(err)
	}
	if calls := f.store.Calls("GetByID"); calls != 0 {
		t.Fatalf("expected pre-populated entity, got %d store reads", calls)
	}
}
