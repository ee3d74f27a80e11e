package pipeline

import (
	"errors"
	"sync"

	"github.com/AnTengye/contractdesk/backend/model"
)

// ErrEmptySelection is returned when a bulk delete has nothing selected
var ErrEmptySelection = errors.New("no contracts selected")

// Snapshot is a copy of the raw record set together with the store version
// it was taken at.
type Snapshot struct {
	Records []model.Contract
	Version uint64
}

// Result is what a table renders for one request
type Result struct {
	View       View             `json:"view"`
	Title      string           `json:"title"`
	Predicates Predicates       `json:"filters"`
	Filtered   bool             `json:"filtered"`
	Page       Page             `json:"page"`
	Empty      bool             `json:"empty"`
	DeleteMode bool             `json:"delete_mode"`
	Selected   []string         `json:"selected"`
	Rows       []model.Contract `json:"-"`
}

// Table is the per-session state of one contract table: view, predicates,
// current page, and the bulk-delete selection. It is safe for concurrent use.
type Table struct {
	mu         sync.Mutex
	view       View
	predicates Predicates
	page       int
	version    uint64
	synced     bool
	deleteMode bool
	selected   []string
}

// NewTable returns a table on the ALL view, page 1, no filters
func NewTable() *Table {
	return &Table{
		view:       ViewAll,
		predicates: Predicates{}.Normalize(),
		page:       1,
	}
}

// Page returns the current 1-based page
func (t *Table) Page() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// SetView switches the view. A different view resets the page.
func (t *Table) SetView(v View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v != t.view {
		t.view = v
		t.page = 1
	}
}

// SetPredicates replaces the predicates. Any changed value resets the page.
func (t *Table) SetPredicates(p Predicates) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p = p.Normalize()
	if p != t.predicates {
		t.predicates = p
		t.page = 1
	}
}

// ClearFilters drops every predicate except the search term
func (t *Table) ClearFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Predicates{Search: t.predicates.Search}.Normalize()
	if p != t.predicates {
		t.predicates = p
		t.page = 1
	}
}

// Render returns the current page of s
func (t *Table) Render(s Snapshot, today model.Date) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.derive(s, today)
	return t.result(rows)
}

// Next moves one page forward; a no-op on the last page
func (t *Table) Next(s Snapshot, today model.Date) Result {
	return t.move(s, today, func(page int) int { return page + 1 })
}

// Prev moves one page back; a no-op on page 1
func (t *Table) Prev(s Snapshot, today model.Date) Result {
	return t.move(s, today, func(page int) int { return page - 1 })
}

// Goto jumps to page n, clamped to the available pages
func (t *Table) Goto(s Snapshot, today model.Date, n int) Result {
	return t.move(s, today, func(int) int { return n })
}

func (t *Table) move(s Snapshot, today model.Date, step func(int) int) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.derive(s, today)
	t.page = ClampPage(step(t.page), TotalPages(len(rows), PageSize))
	return t.result(rows)
}

// ToggleDeleteMode enters or leaves delete mode. Either way the selection is
// cleared.
func (t *Table) ToggleDeleteMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleteMode = !t.deleteMode
	t.selected = nil
	return t.deleteMode
}

// DeleteMode reports whether rows can currently be selected for deletion
func (t *Table) DeleteMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleteMode
}

// ToggleSelected adds id to the selection or removes it
func (t *Table) ToggleSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, sel := range t.selected {
		if sel == id {
			t.selected = append(t.selected[:i], t.selected[i+1:]...)
			return false
		}
	}
	t.selected = append(t.selected, id)
	return true
}

// SelectAll selects every filtered record of s, or clears the selection
func (t *Table) SelectAll(s Snapshot, today model.Date, all bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = nil
	if all {
		for _, c := range t.derive(s, today) {
			t.selected = append(t.selected, c.ID)
		}
	}
	return t.selectedCopy()
}

// Selection returns the ids pending deletion
func (t *Table) Selection() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.selected) == 0 {
		return nil, ErrEmptySelection
	}
	return t.selectedCopy(), nil
}

// FinishDelete clears the selection and leaves delete mode after a bulk
// delete went through.
func (t *Table) FinishDelete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = nil
	t.deleteMode = false
}

// derive syncs with the snapshot version and returns the filtered, sorted
// rows. Must be called with lock held.
func (t *Table) derive(s Snapshot, today model.Date) []model.Contract {
	if !t.synced || s.Version != t.version {
		t.page = 1
		t.version = s.Version
		t.synced = true
		t.pruneSelection(s.Records)
	}
	rows := Run(s.Records, Query{Today: today, View: t.view, Predicates: t.predicates})
	t.page = ClampPage(t.page, TotalPages(len(rows), PageSize))
	return rows
}

func (t *Table) pruneSelection(records []model.Contract) {
	if len(t.selected) == 0 {
		return
	}
	exists := make(map[string]struct{}, len(records))
	for _, c := range records {
		exists[c.ID] = struct{}{}
	}
	kept := t.selected[:0]
	for _, id := range t.selected {
		if _, ok := exists[id]; ok {
			kept = append(kept, id)
		}
	}
	t.selected = kept
}

func (t *Table) result(rows []model.Contract) Result {
	page := Paginate(rows, t.page, PageSize)
	return Result{
		View:       t.view,
		Title:      t.view.Title(),
		Predicates: t.predicates,
		Filtered:   t.predicates != Predicates{}.Normalize(),
		Page:       page,
		Empty:      page.Empty(),
		DeleteMode: t.deleteMode,
		Selected:   t.selectedCopy(),
		Rows:       rows,
	}
}

func (t *Table) selectedCopy() []string {
	out := make([]string, len(t.selected))
	copy(out, t.selected)
	return out
}
