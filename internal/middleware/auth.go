package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/auth"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/wire"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the verified caller, taken from the access token only.
type Identity struct {
	UserID int64
	Role   model.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// skip auth for these
var open = map[string]bool{
	wire.MethodRegister: true,
	wire.MethodLogin:    true,
}

// roles gates every authenticated method. Methods missing here are denied.
var roles = map[string]model.Role{
	wire.MethodCreateAppointment:  model.RoleClient,
	wire.MethodListMyAppointments: model.RoleClient,
	wire.MethodCancelAppointment:  model.RoleClient,
	wire.MethodListAgenda:         model.RoleNutritionist,
	wire.MethodConfirmAppointment: model.RoleNutritionist,
	wire.MethodPromoteUser:        model.RoleAdmin,
}

func Auth(iss *auth.Issuer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		vals := md.Get("authorization")
		if len(vals) > 0 {
			raw = strings.TrimPrefix(vals[0], "Bearer ")
		}

		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := iss.ParseToken(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}

		want, ok := roles[info.FullMethod]
		if !ok || claims.Role != want {
			return nil, status.Error(codes.PermissionDenied, "access denied")
		}

		ctx = WithIdentity(ctx, Identity{UserID: claims.UserID, Role: claims.Role})
		return next(ctx, req)
	}
}
