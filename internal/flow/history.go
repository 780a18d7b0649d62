package flow

import (
	"context"

	"github.com/banclabs/cajero/internal/gateway"
)

// DefaultPageSize is the history page size the browser requests.
const DefaultPageSize = 10

type historyService interface {
	History(ctx context.Context, page, pageSize int) (gateway.HistoryPage, error)
}

// HistoryBrowser fetches one history page at a time. A failed fetch
// shows the error and leaves the previously displayed page untouched;
// paging controls are disabled at the bounds and while a fetch is in
// flight.
type HistoryBrowser struct {
	svc historyService

	PageSize int
	Page     *gateway.HistoryPage // last successfully fetched page
	index    int                  // index of the displayed page
	ErrMsg   string

	busy bool
}

func NewHistory(svc historyService) *HistoryBrowser {
	return &HistoryBrowser{svc: svc, PageSize: DefaultPageSize}
}

func (h *HistoryBrowser) Busy() bool { return h.busy }

// PageIndex is the 0-based index of the displayed page.
func (h *HistoryBrowser) PageIndex() int { return h.index }

// Load fetches the current page (initially page 0).
func (h *HistoryBrowser) Load(ctx context.Context) SubmitResult {
	return h.fetch(ctx, h.index)
}

// CanNext reports whether the next-page control is enabled.
func (h *HistoryBrowser) CanNext() bool {
	return !h.busy && h.Page != nil && h.index < h.Page.TotalPages()-1
}

// CanPrev reports whether the previous-page control is enabled.
func (h *HistoryBrowser) CanPrev() bool {
	return !h.busy && h.index > 0
}

func (h *HistoryBrowser) Next(ctx context.Context) SubmitResult {
	if !h.CanNext() {
		return SubmitNoop
	}
	return h.fetch(ctx, h.index+1)
}

func (h *HistoryBrowser) Prev(ctx context.Context) SubmitResult {
	if !h.CanPrev() {
		return SubmitNoop
	}
	return h.fetch(ctx, h.index-1)
}

func (h *HistoryBrowser) fetch(ctx context.Context, target int) SubmitResult {
	if h.busy {
		return SubmitNoop
	}
	h.busy = true
	page, err := h.svc.History(ctx, target, h.PageSize)
	h.busy = false

	if err != nil {
		// No partial replacement: the displayed page and index stand.
		h.ErrMsg = err.Error()
		return SubmitRejected
	}
	h.Page = &page
	h.index = target
	h.ErrMsg = ""
	return SubmitOK
}
