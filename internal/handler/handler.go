package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/auth"
	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/middleware"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/wire"
)

// Users is the identity store behind registration, login and promotion.
type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
	SetUserRole(ctx context.Context, id int64, role model.Role) error
}

type Handler struct {
	engine *booking.Engine
	users  Users
	issuer *auth.Issuer
}

var _ wire.BookingServiceServer = (*Handler)(nil)

func New(engine *booking.Engine, users Users, issuer *auth.Issuer) *Handler {
	return &Handler{engine: engine, users: users, issuer: issuer}
}

func identity(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return middleware.Identity{}, status.Error(codes.Unauthenticated, "no identity")
	}
	return id, nil
}

// toStatus maps engine errors onto gRPC codes. Unknown errors are logged
// and hidden behind a generic message.
func toStatus(ctx context.Context, err error) error {
	var be *booking.Error
	if errors.As(err, &be) {
		switch {
		case errors.Is(be.Kind, booking.ErrNotFound):
			return status.Error(codes.NotFound, be.Msg)
		case errors.Is(be.Kind, booking.ErrInvalidRequest):
			return status.Error(codes.InvalidArgument, be.Msg)
		case errors.Is(be.Kind, booking.ErrForbidden):
			return status.Error(codes.PermissionDenied, be.Msg)
		}
	}
	logger.FromContext(ctx).Error("internal error", "err", err)
	return status.Error(codes.Internal, "internal error")
}
