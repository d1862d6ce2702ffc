package booking

import (
	"context"
	"time"

	"nutrition-scheduler/internal/model"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// AgendaFilter narrows a nutritionist's agenda. Zero Page/PageSize mean the
// defaults. When Date and a full StartDate/EndDate range are both set, the
// range wins.
type AgendaFilter struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// Dates resolves the filter into a single inclusive date predicate.
func (f AgendaFilter) Dates() model.DateRange {
	var r model.DateRange
	if f.Date != nil {
		d := CalendarDate(*f.Date)
		r = model.DateRange{From: d, To: d}
	}
	if f.StartDate != nil && f.EndDate != nil {
		r = model.DateRange{From: CalendarDate(*f.StartDate), To: CalendarDate(*f.EndDate)}
	}
	return r
}

func (f AgendaFilter) pagination() (page, size int, err error) {
	page, size = f.Page, f.PageSize
	if page < 0 || size < 0 {
		return 0, 0, invalid("page and page size must be positive")
	}
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		return 0, 0, invalid("page size too large")
	}
	return page, size, nil
}

// ListAgenda pages through the slots owned by nutritionistID. The id must
// come from the caller's verified identity.
func (e *Engine) ListAgenda(ctx context.Context, nutritionistID int64, f AgendaFilter) (*model.AgendaPage, error) {
	page, size, err := f.pagination()
	if err != nil {
		return nil, err
	}
	items, total, err := e.store.ListAgenda(ctx, nutritionistID, f.Dates(), size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.AgendaItem{}
	}
	return &model.AgendaPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// CalendarDate drops the clock part of t, keeping its calendar day in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
