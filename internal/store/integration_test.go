package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/notify"
	"nutrition-scheduler/internal/store"
)

// openPostgres connects to DATABASE_URL and applies migrations. Tests using
// it are skipped when no database is configured.
func openPostgres(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx, dbURL))
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return store.New(pool)
}

func seedUser(t *testing.T, st *store.Store, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Email:        fmt.Sprintf("it-%s@example.com", uuid.NewString()[:8]),
		Role:         role,
		PasswordHash: "x",
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestPostgres_ConcurrentCreate(t *testing.T) {
	st := openPostgres(t)
	ctx := context.Background()
	eng := booking.New(st, notify.LogDispatcher{})

	nutri := seedUser(t, st, model.RoleNutritionist)
	day := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	start := day.Add(9 * time.Hour)
	slot := &model.Availability{NutritionistID: nutri.ID, Date: day, StartTime: start, EndTime: start.Add(time.Hour)}
	require.NoError(t, st.CreateAvailability(ctx, slot))

	const n = 8
	clients := make([]*model.User, n)
	for i := range clients {
		clients[i] = seedUser(t, st, model.RoleClient)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, c := range clients {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := eng.Create(ctx, id, slot.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(c.ID)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)

	page, err := eng.ListAgenda(ctx, nutri.ID, booking.AgendaFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsBooked)
	require.NotNil(t, page.Items[0].Appointment)
}

func TestPostgres_CancelFreesSlot(t *testing.T) {
	st := openPostgres(t)
	ctx := context.Background()
	eng := booking.New(st, notify.LogDispatcher{})

	nutri := seedUser(t, st, model.RoleNutritionist)
	first := seedUser(t, st, model.RoleClient)
	second := seedUser(t, st, model.RoleClient)
	day := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)
	start := day.Add(14 * time.Hour)
	slot := &model.Availability{NutritionistID: nutri.ID, Date: day, StartTime: start, EndTime: start.Add(time.Hour)}
	require.NoError(t, st.CreateAvailability(ctx, slot))

	res, err := eng.Create(ctx, first.ID, slot.ID)
	require.NoError(t, err)
	_, err = eng.Cancel(ctx, res.Appointment.ID, first.ID)
	require.NoError(t, err)

	again, err := eng.Create(ctx, second.ID, slot.ID)
	require.NoError(t, err)
	msg, err := eng.Confirm(ctx, again.Appointment.ID, nutri.ID)
	require.NoError(t, err)
	assert.Equal(t, "appointment confirmed", msg)

	history, err := eng.ListByClient(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusCanceled, history[0].Status)
}
