package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/common"
)

// accessTokenInterceptor fills an empty Token on VerifyToken and Logout
// from the access_token metadata header. A missing token is left for the
// service to reject.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	switch r := req.(type) {
	case *api.VerifyTokenRequest:
		if r.Token == "" {
			r.Token = tokenFromMetadata(ctx)
		}
	case *api.LogoutRequest:
		if r.Token == "" {
			r.Token = tokenFromMetadata(ctx)
		}
	}
	return handler(ctx, req)
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "gRPC call",
		"method", info.FullMethod,
		"duration", time.Since(start),
		"code", status.Code(err).String(),
	)
	return resp, err
}
