package budgey

import (
	"context"
	"sync"

	"github.com/ayzanadeem/Budgey/internal/types"
	"github.com/google/uuid"
)

// BreakdownPaginator drives a PageFetcher page by page and folds the results
// into an accumulated ExpenseBreakdown. One instance serves one user
// session; create it through Client.NewBreakdownPaginator and inject it
// where needed instead of sharing it across sessions.
//
// All operations are serialized: the read-cursor, fetch, merge, write-cursor
// sequence runs as one unit with respect to other calls on the same
// instance. Aggregation and merging are pure and run outside the lock.
type BreakdownPaginator struct {
	id       string
	fetcher  PageFetcher
	userID   string
	pageSize int
	logger   types.Logger

	mu        sync.Mutex
	breakdown *ExpenseBreakdown
	// pagesLoaded counts successfully merged pages; 0 until the first fetch
	// succeeds
	pagesLoaded int
	cursor      string
	// cursorUserID guards against applying a cursor captured for another
	// user; a mismatch resets to the start of data
	cursorUserID string
	hasNextPage  bool
	fetching     bool
	// generation tags each fetch with the state it started against; results
	// from a stale generation are discarded instead of merged
	generation  uint64
	inflightGen uint64
}

// NewBreakdownPaginator creates a paginator over the given fetcher. The page
// size must be between 1 and MaxPageSize, and the user id must not be blank.
func NewBreakdownPaginator(fetcher PageFetcher, userID string, pageSize int, logger types.Logger) (*BreakdownPaginator, error) {
	if userID == "" {
		return nil, invalidInputf("user id must not be blank")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, invalidInputf("page size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}

	return &BreakdownPaginator{
		id:          uuid.New().String(),
		fetcher:     fetcher,
		userID:      userID,
		pageSize:    pageSize,
		logger:      logger,
		hasNextPage: true,
	}, nil
}

// ID returns the paginator's session id
func (p *BreakdownPaginator) ID() string {
	return p.id
}

// Breakdown returns the accumulated breakdown as a read-only snapshot, or
// nil before the first successful fetch. The returned value is never
// mutated afterwards; later merges build new values.
func (p *BreakdownPaginator) Breakdown() *ExpenseBreakdown {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.breakdown
}

// State returns a snapshot of the pagination position
func (p *BreakdownPaginator) State() PaginationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *BreakdownPaginator) stateLocked() PaginationState {
	current := p.pagesLoaded
	if current < 1 {
		current = 1
	}
	return PaginationState{
		CurrentPage:     current,
		Cursor:          p.cursor,
		CursorUserID:    p.cursorUserID,
		HasNextPage:     p.hasNextPage,
		HasPreviousPage: p.pagesLoaded > 1,
	}
}

// HasNextPage reports whether another page is believed to exist
func (p *BreakdownPaginator) HasNextPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNextPage
}

// CurrentPage returns the 1-based page number of the last loaded page
func (p *BreakdownPaginator) CurrentPage() int {
	return p.State().CurrentPage
}

// LoadNextPage fetches the next page and merges it into the accumulated
// breakdown. It is a silent no-op while a fetch is in flight or when the
// source is believed exhausted. A fetch failure leaves all state untouched,
// so a retry repeats the same page.
func (p *BreakdownPaginator) LoadNextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.fetching || !p.hasNextPage {
		p.mu.Unlock()
		return nil
	}

	// A cursor captured for a different user is never replayed
	if p.cursorUserID != "" && p.cursorUserID != p.userID {
		p.cursor = ""
		p.cursorUserID = ""
	}

	cursor := p.cursor
	gen := p.generation
	p.fetching = true
	p.inflightGen = gen
	p.mu.Unlock()

	page, err := p.fetcher.FetchPage(ctx, p.userID, p.pageSize, cursor)

	var merged *ExpenseBreakdown
	var mergeErr error
	if err == nil {
		merged = MergeBreakdown(p.snapshotBreakdown(), AggregatePage(page.Records))
		mergeErr = merged.validate()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen == p.inflightGen {
		p.fetching = false
	}
	if gen != p.generation {
		// State was reset while this fetch was in flight; discard
		return nil
	}

	if err != nil {
		p.logError("page fetch failed", "paginator", p.id, "page", p.pagesLoaded+1, "error", err)
		return err
	}
	if mergeErr != nil {
		p.logError("page merge failed", "paginator", p.id, "page", p.pagesLoaded+1, "error", mergeErr)
		return mergeErr
	}

	p.breakdown = merged
	p.pagesLoaded++
	p.cursor = page.NextCursor
	p.cursorUserID = p.userID
	p.hasNextPage = len(page.Records) == p.pageSize
	return nil
}

// LoadPreviousPage steps back one page (floor 1) by re-fetching from the
// start of data up to the target page. The cursor model is forward-only, so
// backward navigation costs O(pages) fetches; the accumulated state is only
// replaced once the rebuild succeeds.
func (p *BreakdownPaginator) LoadPreviousPage(ctx context.Context) error {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return nil
	}
	target := p.pagesLoaded - 1
	if target < 1 {
		target = 1
	}
	p.generation++
	gen := p.generation
	p.fetching = true
	p.inflightGen = gen
	p.mu.Unlock()

	return p.rebuild(ctx, gen, target)
}

// Refresh resets to page 1: the accumulated state and cursor are cleared
// immediately, then page 1 is re-fetched. Any fetch still in flight is
// superseded and its result discarded.
func (p *BreakdownPaginator) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.breakdown = nil
	p.pagesLoaded = 0
	p.cursor = ""
	p.cursorUserID = ""
	p.hasNextPage = true
	p.fetching = true
	p.inflightGen = gen
	p.mu.Unlock()

	return p.rebuild(ctx, gen, 1)
}

// ResetCursor clears the cursor and its user binding without altering the
// displayed state. Callers use it when the session context changes before
// the next fetch. Any fetch in flight is superseded.
func (p *BreakdownPaginator) ResetCursor() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.cursor = ""
	p.cursorUserID = ""
}

// rebuild fetches pages 1..target from the start of data and installs the
// result atomically. The caller must have marked the paginator as fetching
// under generation gen.
func (p *BreakdownPaginator) rebuild(ctx context.Context, gen uint64, target int) error {
	var breakdown *ExpenseBreakdown
	cursor := ""
	hasNext := true
	loaded := 0

	for loaded < target && hasNext {
		page, err := p.fetcher.FetchPage(ctx, p.userID, p.pageSize, cursor)
		if err != nil {
			p.finishRebuild(gen, nil, 0, "", false, false)
			p.logError("rebuild fetch failed", "paginator", p.id, "page", loaded+1, "error", err)
			return err
		}

		breakdown = MergeBreakdown(breakdown, AggregatePage(page.Records))
		if err := breakdown.validate(); err != nil {
			p.finishRebuild(gen, nil, 0, "", false, false)
			p.logError("rebuild merge failed", "paginator", p.id, "page", loaded+1, "error", err)
			return err
		}

		cursor = page.NextCursor
		hasNext = len(page.Records) == p.pageSize
		loaded++
	}

	p.finishRebuild(gen, breakdown, loaded, cursor, hasNext, true)
	return nil
}

// finishRebuild installs a rebuild result unless the generation went stale
// while it ran
func (p *BreakdownPaginator) finishRebuild(gen uint64, breakdown *ExpenseBreakdown, loaded int, cursor string, hasNext, apply bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen == p.inflightGen {
		p.fetching = false
	}
	if gen != p.generation || !apply {
		return
	}

	p.breakdown = breakdown
	p.pagesLoaded = loaded
	p.cursor = cursor
	if loaded > 0 {
		p.cursorUserID = p.userID
	} else {
		p.cursorUserID = ""
	}
	p.hasNextPage = hasNext
}

// snapshotBreakdown reads the accumulated breakdown under the lock
func (p *BreakdownPaginator) snapshotBreakdown() *ExpenseBreakdown {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.breakdown
}

func (p *BreakdownPaginator) logError(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, keysAndValues...)
	}
}
