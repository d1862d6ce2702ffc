package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func TestAgendaFilter_Dates(t *testing.T) {
	d := day(2025, 3, 10)
	from, to := day(2025, 3, 1), day(2025, 3, 31)

	t.Run("Should match one day for an exact date", func(t *testing.T) {
		r := booking.AgendaFilter{Date: ptr(d.Add(15 * time.Hour))}.Dates()
		assert.Equal(t, model.DateRange{From: d, To: d}, r)
	})

	t.Run("Should prefer a full range over an exact date", func(t *testing.T) {
		r := booking.AgendaFilter{Date: &d, StartDate: &from, EndDate: &to}.Dates()
		assert.Equal(t, model.DateRange{From: from, To: to}, r)
	})

	t.Run("Should ignore a half-open range", func(t *testing.T) {
		assert.Equal(t, model.DateRange{}, booking.AgendaFilter{StartDate: &from}.Dates())
		assert.Equal(t, model.DateRange{From: d, To: d}, booking.AgendaFilter{Date: &d, EndDate: &to}.Dates())
	})
}

func TestEngine_ListAgenda(t *testing.T) {
	ctx := context.Background()

	t.Run("Should page through slots in date and time order", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 25; i++ {
			f.slot(t, f.nutritionist.ID, day(2025, 4, 1+i/5), 8+i%5)
		}

		page, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{Page: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 25, page.Total)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 5)
		assert.Equal(t, day(2025, 4, 5), page.Items[0].Date)
		assert.Equal(t, 8, page.Items[0].StartTime.Hour())
		assert.Equal(t, 12, page.Items[4].StartTime.Hour())

		beyond, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{Page: 4})
		require.NoError(t, err)
		assert.NotNil(t, beyond.Items)
		assert.Empty(t, beyond.Items)
		assert.EqualValues(t, 25, beyond.Total)
	})

	t.Run("Should filter by date and range", func(t *testing.T) {
		f := newFixture(t)
		for d := 1; d <= 5; d++ {
			f.slot(t, f.nutritionist.ID, day(2025, 5, d), 9)
		}

		exact, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{Date: ptr(day(2025, 5, 3))})
		require.NoError(t, err)
		require.Len(t, exact.Items, 1)
		assert.Equal(t, day(2025, 5, 3), exact.Items[0].Date)

		ranged, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{
			Date:      ptr(day(2025, 5, 1)),
			StartDate: ptr(day(2025, 5, 2)),
			EndDate:   ptr(day(2025, 5, 4)),
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, ranged.Total)

		inverted, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{
			StartDate: ptr(day(2025, 5, 4)),
			EndDate:   ptr(day(2025, 5, 2)),
		})
		require.NoError(t, err)
		assert.Zero(t, inverted.Total)
		assert.Zero(t, inverted.TotalPages)
	})

	t.Run("Should only show the caller's own slots", func(t *testing.T) {
		f := newFixture(t)
		other := f.user(t, "n2@example.com", "", model.RoleNutritionist)
		f.slot(t, f.nutritionist.ID, day(2025, 5, 1), 9)
		f.slot(t, other.ID, day(2025, 5, 1), 10)

		page, err := f.eng.ListAgenda(ctx, other.ID, booking.AgendaFilter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 10, page.Items[0].StartTime.Hour())
	})

	t.Run("Should validate pagination", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{Page: -1})
		assert.ErrorIs(t, err, booking.ErrInvalidRequest)
		_, err = f.eng.ListAgenda(ctx, f.nutritionist.ID, booking.AgendaFilter{PageSize: booking.MaxPageSize + 1})
		assert.ErrorIs(t, err, booking.ErrInvalidRequest)
	})
}
