package handler

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/auth"
	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/wire"
)

const (
	minPassword = 6
	maxPassword = 30
)

func (h *Handler) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}
	if len(req.Password) < minPassword {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}
	if len(req.Password) > maxPassword {
		return nil, status.Error(codes.InvalidArgument, "password too long")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	u := &model.User{
		Email:        email,
		Role:         model.RoleClient,
		PasswordHash: hash,
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = &name
	}

	if err := h.users.CreateUser(ctx, u); err != nil {
		// dup email, but don't reveal that
		logger.FromContext(ctx).Info("registration failed", "err", err)
		return nil, status.Error(codes.AlreadyExists, "registration failed")
	}

	tok, err := h.issuer.MakeToken(u.ID, u.Role)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &wire.RegisterResponse{UserId: u.ID, Token: tok}, nil
}

func (h *Handler) Login(ctx context.Context, req *wire.LoginRequest) (*wire.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}

	u, err := h.users.UserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := h.issuer.MakeToken(u.ID, u.Role)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &wire.LoginResponse{Token: tok, UserId: u.ID, Name: u.DisplayName(""), Role: string(u.Role)}, nil
}

// PromoteUser turns a client into a nutritionist. Admins are neither
// promoted nor demoted.
func (h *Handler) PromoteUser(ctx context.Context, req *wire.PromoteUserRequest) (*wire.PromoteUserResponse, error) {
	if req.UserId <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user id required")
	}

	u, err := h.users.UserByID(ctx, req.UserId)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	switch u.Role {
	case model.RoleNutritionist:
		return nil, status.Error(codes.InvalidArgument, "user is already a nutritionist")
	case model.RoleAdmin:
		return nil, status.Error(codes.InvalidArgument, "admin cannot be promoted or demoted")
	case model.RoleClient:
	}

	if err := h.users.SetUserRole(ctx, u.ID, model.RoleNutritionist); err != nil {
		if errors.Is(err, booking.ErrRecordNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, toStatus(ctx, err)
	}

	return &wire.PromoteUserResponse{
		Message: "promoted to nutritionist",
		User: &wire.UserInfo{
			Id:    u.ID,
			Email: u.Email,
			Name:  u.DisplayName(""),
			Role:  string(model.RoleNutritionist),
		},
	}, nil
}
