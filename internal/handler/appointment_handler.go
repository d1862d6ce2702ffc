package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/wire"
)

const dateLayout = "2006-01-02"

func (h *Handler) CreateAppointment(ctx context.Context, req *wire.CreateAppointmentRequest) (*wire.CreateAppointmentResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.AvailabilityId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "availability id required")
	}

	res, err := h.engine.Create(ctx, id.UserID, req.AvailabilityId)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	a := res.Appointment
	return &wire.CreateAppointmentResponse{
		Message: res.Message,
		Appointment: &wire.Appointment{
			Id:             a.ID,
			ClientId:       a.ClientID,
			AvailabilityId: a.AvailabilityID,
			Status:         string(a.Status),
			CreatedAt:      a.CreatedAt,
		},
	}, nil
}

func (h *Handler) ConfirmAppointment(ctx context.Context, req *wire.AppointmentRequest) (*wire.MessageResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.AppointmentId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "appointment id required")
	}

	msg, err := h.engine.Confirm(ctx, req.AppointmentId, id.UserID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &wire.MessageResponse{Message: msg}, nil
}

func (h *Handler) CancelAppointment(ctx context.Context, req *wire.AppointmentRequest) (*wire.MessageResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.AppointmentId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "appointment id required")
	}

	msg, err := h.engine.Cancel(ctx, req.AppointmentId, id.UserID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &wire.MessageResponse{Message: msg}, nil
}

func (h *Handler) ListMyAppointments(ctx context.Context, _ *wire.ListMyAppointmentsRequest) (*wire.ListMyAppointmentsResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	list, err := h.engine.ListByClient(ctx, id.UserID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	out := make([]*wire.ClientAppointment, len(list))
	for i, a := range list {
		out[i] = &wire.ClientAppointment{
			Id:        a.ID,
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
			Availability: &wire.Slot{
				Date:         a.Date.Format(dateLayout),
				StartTime:    a.StartTime,
				EndTime:      a.EndTime,
				Nutritionist: &wire.Contact{Id: a.Nutritionist.ID, Email: a.Nutritionist.Email},
			},
		}
	}
	return &wire.ListMyAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) ListAgenda(ctx context.Context, req *wire.ListAgendaRequest) (*wire.ListAgendaResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	f := booking.AgendaFilter{Page: int(req.Page), PageSize: int(req.PageSize)}
	for _, d := range []struct {
		raw string
		dst **time.Time
	}{
		{req.Date, &f.Date},
		{req.StartDate, &f.StartDate},
		{req.EndDate, &f.EndDate},
	} {
		if d.raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, d.raw, time.UTC)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid date %q", d.raw)
		}
		*d.dst = &t
	}

	page, err := h.engine.ListAgenda(ctx, id.UserID, f)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	out := &wire.ListAgendaResponse{
		Items:      make([]*wire.AgendaItem, len(page.Items)),
		Total:      page.Total,
		Page:       int32(page.Page),
		PageSize:   int32(page.PageSize),
		TotalPages: int32(page.TotalPages),
	}
	for i, it := range page.Items {
		out.Items[i] = agendaItem(it)
	}
	return out, nil
}

func agendaItem(it model.AgendaItem) *wire.AgendaItem {
	w := &wire.AgendaItem{
		AvailabilityId: it.AvailabilityID,
		Date:           it.Date.Format(dateLayout),
		StartTime:      it.StartTime,
		EndTime:        it.EndTime,
		IsBooked:       it.IsBooked,
	}
	if a := it.Appointment; a != nil {
		w.Appointment = &wire.AgendaAppointment{
			Id:     a.ID,
			Status: string(a.Status),
			Client: &wire.Contact{Id: a.Client.ID, Email: a.Client.Email},
		}
	}
	return w
}
