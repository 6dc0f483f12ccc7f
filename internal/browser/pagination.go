package browser

// Layout fixes the geometry the pager works with. Heights share one unit,
// terminal rows or pixels.
type Layout struct {
	RowHeight     int
	ControlHeight int
}

var (
	// TerminalLayout is one row per entry plus a two-row page bar
	TerminalLayout = Layout{RowHeight: 1, ControlHeight: 2}

	// PixelLayout matches a desktop list with 48px rows and an 84px control strip
	PixelLayout = Layout{RowHeight: 48, ControlHeight: 52 + 16 + 16}
)

// PaginationState is the derived view of a pager
type PaginationState struct {
	Paginated     bool
	CurrentPage   int
	PageSize      int
	NumberOfPages int
}

// Paginate computes page size and count for a viewport of height holding
// itemCount entries. The result depends on nothing else.
func (l Layout) Paginate(height, itemCount int) PaginationState {
	rowHeight := max(l.RowHeight, 1)
	height = max(height, 0)

	maxItemsNoPagination := height / rowHeight
	if maxItemsNoPagination > itemCount {
		return PaginationState{
			CurrentPage:   1,
			PageSize:      itemCount,
			NumberOfPages: 1,
		}
	}

	pageSize := max(1, (height-l.ControlHeight)/rowHeight)
	pages := (itemCount + pageSize - 1) / pageSize
	return PaginationState{
		Paginated:     true,
		CurrentPage:   1,
		PageSize:      pageSize,
		NumberOfPages: max(pages, 1),
	}
}

// Pager tracks the current page across resizes and content changes
type Pager struct {
	layout    Layout
	height    int
	itemCount int
	current   int
}

// NewPager creates a pager on page 1
func NewPager(layout Layout) *Pager {
	return &Pager{layout: layout, current: 1}
}

// Resize records a new viewport height. A change returns to page 1, a
// repeated notification with the same height is a no-op.
func (p *Pager) Resize(height int) {
	if height == p.height {
		return
	}
	p.height = height
	p.current = 1
}

// SetItemCount records a new number of entries, returning to page 1 on change
func (p *Pager) SetItemCount(n int) {
	if n == p.itemCount {
		return
	}
	p.itemCount = n
	p.current = 1
}

// State returns the pagination for the current height and item count
func (p *Pager) State() PaginationState {
	state := p.layout.Paginate(p.height, p.itemCount)
	state.CurrentPage = min(max(p.current, 1), state.NumberOfPages)
	return state
}

// GoTo moves to page, clamped into range
func (p *Pager) GoTo(page int) {
	pages := p.layout.Paginate(p.height, p.itemCount).NumberOfPages
	p.current = min(max(page, 1), pages)
}

// Next moves forward one page if possible
func (p *Pager) Next() { p.GoTo(p.State().CurrentPage + 1) }

// Prev moves back one page if possible
func (p *Pager) Prev() { p.GoTo(p.State().CurrentPage - 1) }

// Bounds returns the half-open index range of the visible entries
func (p *Pager) Bounds() (start, end int) {
	state := p.State()
	if !state.Paginated {
		return 0, p.itemCount
	}
	start = (state.CurrentPage - 1) * state.PageSize
	end = min(start+state.PageSize, p.itemCount)
	return min(start, end), end
}

// Visible returns the slice of items on the current page
func Visible[T any](p *Pager, items []T) []T {
	p.SetItemCount(len(items))
	start, end := p.Bounds()
	return items[start:end]
}

// LinkKind tells the renderer what a page bar element is
type LinkKind int

const (
	LinkPrev LinkKind = iota
	LinkPage
	LinkEllipsis
	LinkNext
)

// PageLink is one element of the page bar
type PageLink struct {
	Kind    LinkKind
	Page    int
	Current bool
}

// Links returns the page bar: prev, leading ellipsis, the pages around the
// current one, trailing ellipsis, next. Empty when not paginated.
func (p *Pager) Links() []PageLink {
	state := p.State()
	if !state.Paginated {
		return nil
	}
	return PageLinks(state.CurrentPage, state.NumberOfPages)
}

// PageLinks builds the page bar for page cur of n
func PageLinks(cur, n int) []PageLink {
	var links []PageLink
	if cur > 1 {
		links = append(links, PageLink{Kind: LinkPrev, Page: cur - 1})
	}
	if cur > 2 {
		links = append(links, PageLink{Kind: LinkEllipsis})
	}
	for page := cur - 1; page <= cur+1; page++ {
		if page < 1 || page > n {
			continue
		}
		links = append(links, PageLink{Kind: LinkPage, Page: page, Current: page == cur})
	}
	if cur < n-1 {
		links = append(links, PageLink{Kind: LinkEllipsis})
	}
	if cur < n {
		links = append(links, PageLink{Kind: LinkNext, Page: cur + 1})
	}
	return links
}
