package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodec(t *testing.T) {
	t.Run("Should carry nested messages and timestamps", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		in := &ListAgendaResponse{
			Items: []*AgendaItem{
				{AvailabilityId: 1, Date: "2025-03-10", StartTime: start, EndTime: start.Add(time.Hour)},
				{
					AvailabilityId: 2, Date: "2025-03-10", IsBooked: true,
					StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour),
					Appointment: &AgendaAppointment{Id: 9, Status: "SCHEDULED", Client: &Contact{Id: 3, Email: "c@example.com"}},
				},
			},
			Total: 12, Page: 2, PageSize: 10, TotalPages: 2,
		}
		b, err := Codec{}.Marshal(in)
		require.NoError(t, err)

		out := &ListAgendaResponse{}
		require.NoError(t, Codec{}.Unmarshal(b, out))
		require.Len(t, out.Items, 2)
		assert.Nil(t, out.Items[0].Appointment)
		assert.True(t, out.Items[1].IsBooked)
		assert.Equal(t, "c@example.com", out.Items[1].Appointment.Client.Email)
		assert.True(t, start.Equal(out.Items[0].StartTime))
		assert.EqualValues(t, 12, out.Total)
		assert.EqualValues(t, 2, out.TotalPages)
	})

	t.Run("Should keep negative paging values", func(t *testing.T) {
		b := (&ListAgendaRequest{Page: -1, PageSize: 5}).MarshalWire()
		var out ListAgendaRequest
		require.NoError(t, out.UnmarshalWire(b))
		assert.EqualValues(t, -1, out.Page)
		assert.EqualValues(t, 5, out.PageSize)
	})

	t.Run("Should skip unknown fields", func(t *testing.T) {
		b := protowire.AppendTag(nil, 15, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, 42)
		b = append(b, (&LoginRequest{Email: "a@b.c", Password: "secret"}).MarshalWire()...)

		var out LoginRequest
		require.NoError(t, out.UnmarshalWire(b))
		assert.Equal(t, "a@b.c", out.Email)
		assert.Equal(t, "secret", out.Password)
	})

	t.Run("Should fail on truncated input", func(t *testing.T) {
		b := (&LoginRequest{Email: "a@b.c"}).MarshalWire()
		var out LoginRequest
		assert.Error(t, out.UnmarshalWire(b[:len(b)-2]))
	})

	t.Run("Should refuse foreign types", func(t *testing.T) {
		_, err := Codec{}.Marshal("nope")
		assert.Error(t, err)
		assert.Error(t, Codec{}.Unmarshal(nil, new(int)))
		assert.Equal(t, "proto", Codec{}.Name())
	})
}
