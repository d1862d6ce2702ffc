package middleware

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/auth"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/wire"
)

func call(t *testing.T, ic grpc.UnaryServerInterceptor, ctx context.Context, method string) (Identity, error) {
	t.Helper()
	var got Identity
	_, err := ic(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, func(ctx context.Context, _ any) (any, error) {
		got, _ = IdentityFrom(ctx)
		return "ok", nil
	})
	return got, err
}

func bearer(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
}

func TestAuth(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Minute)
	ic := Auth(iss)

	t.Run("Should let open methods through without a token", func(t *testing.T) {
		_, err := call(t, ic, context.Background(), wire.MethodLogin)
		assert.NoError(t, err)
	})

	t.Run("Should require a token", func(t *testing.T) {
		_, err := call(t, ic, metadata.NewIncomingContext(context.Background(), metadata.MD{}), wire.MethodListAgenda)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		_, err = call(t, ic, bearer("garbage"), wire.MethodListAgenda)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Should put the verified identity in the context", func(t *testing.T) {
		tok, err := iss.MakeToken(7, model.RoleClient)
		require.NoError(t, err)
		id, err := call(t, ic, bearer(tok), wire.MethodCreateAppointment)
		require.NoError(t, err)
		assert.Equal(t, Identity{UserID: 7, Role: model.RoleClient}, id)
	})

	t.Run("Should gate methods by role", func(t *testing.T) {
		cases := []struct {
			role    model.Role
			method  string
			allowed bool
		}{
			{model.RoleClient, wire.MethodCancelAppointment, true},
			{model.RoleClient, wire.MethodConfirmAppointment, false},
			{model.RoleNutritionist, wire.MethodConfirmAppointment, true},
			{model.RoleNutritionist, wire.MethodCreateAppointment, false},
			{model.RoleAdmin, wire.MethodPromoteUser, true},
			{model.RoleAdmin, wire.MethodListAgenda, false},
			{model.RoleClient, "/nutrition.v1.BookingService/Unknown", false},
		}
		for _, c := range cases {
			tok, err := iss.MakeToken(1, c.role)
			require.NoError(t, err)
			_, err = call(t, ic, bearer(tok), c.method)
			if c.allowed {
				assert.NoError(t, err, "%s %s", c.role, c.method)
			} else {
				assert.Equal(t, codes.PermissionDenied, status.Code(err), "%s %s", c.role, c.method)
			}
		}
	})
}

func TestRateLimit(t *testing.T) {
	withPeer := func(addr string, md metadata.MD) context.Context {
		ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP(addr), Port: 40000}})
		if md != nil {
			ctx = metadata.NewIncomingContext(ctx, md)
		}
		return ctx
	}

	t.Run("Should throttle login per client", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ic := RateLimit(NewRateLimiter(ctx, 0.001, 2))

		a := withPeer("10.0.0.1", nil)
		for i := 0; i < 2; i++ {
			_, err := call(t, ic, a, wire.MethodLogin)
			require.NoError(t, err)
		}
		_, err := call(t, ic, a, wire.MethodLogin)
		assert.Equal(t, codes.ResourceExhausted, status.Code(err))

		_, err = call(t, ic, withPeer("10.0.0.2", nil), wire.MethodLogin)
		assert.NoError(t, err)
		_, err = call(t, ic, a, wire.MethodListAgenda)
		assert.NoError(t, err, "only open methods are limited")
	})

	t.Run("Should trust forwarded addresses from loopback only", func(t *testing.T) {
		fwd := metadata.Pairs(ForwardedForKey, "203.0.113.9")
		assert.Equal(t, "203.0.113.9", clientIP(withPeer("127.0.0.1", fwd)))
		assert.Equal(t, "10.0.0.1", clientIP(withPeer("10.0.0.1", fwd)))
		assert.Equal(t, "unknown", clientIP(context.Background()))
	})

	t.Run("Should forget idle clients", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rl := NewRateLimiter(ctx, 1, 1)
		rl.get("10.0.0.1")
		rl.clients["10.0.0.1"].seen = time.Now().Add(-time.Hour)
		rl.sweep(time.Minute)
		assert.Empty(t, rl.clients)
	})
}

type observed struct {
	mu    sync.Mutex
	codes []string
}

func (o *observed) ObserveRequest(_, code string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes = append(o.codes, code)
}

func TestLogging(t *testing.T) {
	t.Run("Should attach a logger and observe the status code", func(t *testing.T) {
		var buf bytes.Buffer
		obs := &observed{}
		ic := Logging(logger.New(&logger.Config{Level: logger.InfoLevel, Output: &buf}), obs)

		_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: wire.MethodLogin},
			func(ctx context.Context, _ any) (any, error) {
				logger.FromContext(ctx).Info("inside")
				return nil, status.Error(codes.Unauthenticated, "invalid credentials")
			})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, []string{"Unauthenticated"}, obs.codes)
		assert.Contains(t, buf.String(), "inside")
		assert.Contains(t, buf.String(), wire.MethodLogin)
	})
}
