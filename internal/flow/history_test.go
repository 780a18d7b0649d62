package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/banclabs/cajero/internal/gateway"
)

// fakeHistory serves total items sliced into PageSize pages.
type fakeHistory struct {
	total int
	calls int
	err   error
}

func (s *fakeHistory) History(ctx context.Context, page, pageSize int) (gateway.HistoryPage, error) {
	s.calls++
	if s.err != nil {
		return gateway.HistoryPage{}, s.err
	}
	start := page * pageSize
	end := start + pageSize
	if end > s.total {
		end = s.total
	}
	var items []gateway.HistoryItem
	for i := start; i < end; i++ {
		items = append(items, gateway.HistoryItem{ID: fmt.Sprintf("tx-%d", i)})
	}
	return gateway.HistoryPage{
		Items:      items,
		PageIndex:  page,
		PageSize:   pageSize,
		TotalCount: s.total,
	}, nil
}

func TestHistoryPaging(t *testing.T) {
	svc := &fakeHistory{total: 25}
	h := NewHistory(svc)

	if got := h.Load(context.Background()); got != SubmitOK {
		t.Fatalf("load = %v", got)
	}
	if len(h.Page.Items) != 10 || h.PageIndex() != 0 {
		t.Fatalf("page 0: %d items, index %d", len(h.Page.Items), h.PageIndex())
	}
	if h.CanPrev() {
		t.Fatal("prev enabled on first page")
	}
	if !h.CanNext() {
		t.Fatal("next disabled with more pages available")
	}

	h.Next(context.Background())
	if h.PageIndex() != 1 || len(h.Page.Items) != 10 {
		t.Fatalf("page 1: %d items, index %d", len(h.Page.Items), h.PageIndex())
	}

	h.Next(context.Background())
	if h.PageIndex() != 2 || len(h.Page.Items) != 5 {
		t.Fatalf("page 2: %d items, index %d", len(h.Page.Items), h.PageIndex())
	}
	if h.CanNext() {
		t.Fatal("next enabled on last page")
	}

	if got := h.Next(context.Background()); got != SubmitNoop {
		t.Fatalf("next past the end = %v, want noop", got)
	}
	if svc.calls != 3 {
		t.Fatalf("calls = %d, want no fetch past the end", svc.calls)
	}
}

func TestHistoryFailedFetchKeepsPage(t *testing.T) {
	svc := &fakeHistory{total: 25}
	h := NewHistory(svc)
	h.Load(context.Background())

	svc.err = errors.New("Tiempo de espera agotado. Verifica tu conexión.")
	if got := h.Next(context.Background()); got != SubmitRejected {
		t.Fatalf("next = %v", got)
	}
	if h.PageIndex() != 0 {
		t.Fatalf("index moved to %d on failed fetch", h.PageIndex())
	}
	if h.Page == nil || h.Page.PageIndex != 0 {
		t.Fatal("displayed page replaced on failed fetch")
	}
	if h.ErrMsg == "" {
		t.Fatal("no error surfaced")
	}

	// recovery clears the error and advances
	svc.err = nil
	if got := h.Next(context.Background()); got != SubmitOK {
		t.Fatalf("retry next = %v", got)
	}
	if h.PageIndex() != 1 || h.ErrMsg != "" {
		t.Fatalf("index = %d, ErrMsg = %q after recovery", h.PageIndex(), h.ErrMsg)
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(&fakeHistory{total: 0})
	if got := h.Load(context.Background()); got != SubmitOK {
		t.Fatalf("load = %v; an empty history is not an error", got)
	}
	if len(h.Page.Items) != 0 || h.Page.TotalCount != 0 {
		t.Fatalf("page = %+v", h.Page)
	}
	if h.CanNext() || h.CanPrev() {
		t.Fatal("paging enabled on empty history")
	}
}

func TestHistoryInitialLoadFailure(t *testing.T) {
	h := NewHistory(&fakeHistory{err: errors.New("No se pudo conectar con el servidor.")})
	if got := h.Load(context.Background()); got != SubmitRejected {
		t.Fatalf("load = %v", got)
	}
	if h.Page != nil {
		t.Fatal("page set on failed initial load")
	}
	if h.CanNext() || h.CanPrev() {
		t.Fatal("paging enabled without a loaded page")
	}
}
