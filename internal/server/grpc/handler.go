package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	u, err := s.auth.Register(ctx, validation.RegistrationForm{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		return &api.RegisterResponse{Result: failed(err, common.ErrRegistrationFailed)}, nil
	}
	return &api.RegisterResponse{Result: ok(), User: toAPIUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	res, err := s.auth.Login(ctx, validation.LoginForm{Email: req.Email, Password: req.Password})
	if err != nil {
		return &api.LoginResponse{Result: failed(err, common.ErrLoginFailed)}, nil
	}
	return &api.LoginResponse{Result: ok(), User: toAPIUser(res.User), Token: res.Token}, nil
}

func (s *GRPCServer) VerifyToken(ctx context.Context, req *api.VerifyTokenRequest) (*api.VerifyTokenResponse, error) {
	u, err := s.auth.VerifyToken(ctx, req.Token)
	if err != nil {
		return &api.VerifyTokenResponse{Result: failed(err, common.ErrVerificationFailed)}, nil
	}
	return &api.VerifyTokenResponse{Result: ok(), User: toAPIUser(u)}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {
	if err := s.auth.Logout(ctx, req.Token); err != nil {
		return &api.LogoutResponse{Result: failed(err, common.ErrLogoutFailed)}, nil
	}
	return &api.LogoutResponse{Result: ok()}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func ok() api.Result { return api.Result{Success: true} }

func failed(err error, fallback *common.Failure) api.Result {
	return api.Result{Success: false, Message: common.AsFailure(err, fallback).Message}
}

func toAPIUser(u *models.PublicUser) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		PublicID:  u.PublicID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: timestamppb.New(u.CreatedAt),
	}
}
