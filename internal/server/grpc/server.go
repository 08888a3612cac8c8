// Package grpc exposes the auth service as tripauth.v1.AuthService.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/logging"
	"github.com/dmitrijs2005/tripauth/internal/server/services"
)

type GRPCServer struct {
	api.UnimplementedAuthServiceServer
	address string
	auth    services.Authenticator
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, a services.Authenticator) *GRPCServer {
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		auth:    a,
	}
}

// newServer builds a grpc.Server with the interceptor chain and the service
// registered, ready to Serve on any listener.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
