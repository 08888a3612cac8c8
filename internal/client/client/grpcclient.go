package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/client/models"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

// callTimeout bounds every call. The server delays each operation on
// purpose, so this is well above its default latency.
const callTimeout = 15 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func NewAuthClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, form validation.RegistrationForm) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.Register(ctx, &api.RegisterRequest{
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}
	return fromAPIUser(resp.User), nil
}

func (s *GRPCClient) Login(ctx context.Context, form validation.LoginForm) (*models.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, "", s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, "", err
	}
	return fromAPIUser(resp.User), resp.Token, nil
}

func (s *GRPCClient) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(withAccessToken(ctx, token), callTimeout)
	defer cancel()

	resp, err := s.client.VerifyToken(ctx, &api.VerifyTokenRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := rejected(resp.Result); err != nil {
		return nil, err
	}
	return fromAPIUser(resp.User), nil
}

func (s *GRPCClient) Logout(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(withAccessToken(ctx, token), callTimeout)
	defer cancel()

	resp, err := s.client.Logout(ctx, &api.LogoutRequest{})
	if err != nil {
		return s.mapError(err)
	}
	return rejected(resp.Result)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func rejected(r api.Result) error {
	if r.Success {
		return nil
	}
	return &RejectedError{Message: r.Message}
}

func fromAPIUser(u *api.User) *models.User {
	if u == nil {
		return nil
	}
	out := &models.User{
		PublicID:  u.PublicID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if u.CreatedAt != nil {
		out.CreatedAt = u.CreatedAt.AsTime()
	}
	return out
}
