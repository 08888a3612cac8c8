package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

/*************
 * Fake api client
 *************/

type fakeAPI struct {
	lastRegisterReq *api.RegisterRequest
	lastLoginReq    *api.LoginRequest
	lastToken       string

	registerResp *api.RegisterResponse
	loginResp    *api.LoginResponse
	verifyResp   *api.VerifyTokenResponse
	logoutResp   *api.LogoutResponse
	pingResp     *api.PingResponse
	err          error
}

func tokenOf(ctx context.Context) string {
	md, _ := metadata.FromOutgoingContext(ctx)
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *fakeAPI) Register(ctx context.Context, in *api.RegisterRequest, opts ...grpc.CallOption) (*api.RegisterResponse, error) {
	f.lastRegisterReq = in
	return f.registerResp, f.err
}
func (f *fakeAPI) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.LoginResponse, error) {
	f.lastLoginReq = in
	return f.loginResp, f.err
}
func (f *fakeAPI) VerifyToken(ctx context.Context, in *api.VerifyTokenRequest, opts ...grpc.CallOption) (*api.VerifyTokenResponse, error) {
	f.lastToken = tokenOf(ctx)
	return f.verifyResp, f.err
}
func (f *fakeAPI) Logout(ctx context.Context, in *api.LogoutRequest, opts ...grpc.CallOption) (*api.LogoutResponse, error) {
	f.lastToken = tokenOf(ctx)
	return f.logoutResp, f.err
}
func (f *fakeAPI) Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return f.pingResp, f.err
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorContains(t, c.mapError(status.Error(codes.Internal, "x")), "rpc error:")
	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.NewOutgoingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "old", "x", "y"))
	ctx = withAccessToken(ctx, "new")

	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"y"}, md.Get("x"))
}

/*************
 * Operation tests
 *************/

func TestRegister_OK(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeAPI{registerResp: &api.RegisterResponse{
		Result: api.Result{Success: true},
		User:   &api.User{PublicID: "p", Email: "a@b.com", CreatedAt: timestamppb.New(created)},
	}}
	c := &GRPCClient{client: f}

	u, err := c.Register(context.Background(), validation.RegistrationForm{Email: "a@b.com", ConfirmPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "p", u.PublicID)
	assert.True(t, created.Equal(u.CreatedAt))
	assert.Equal(t, "pw", f.lastRegisterReq.ConfirmPassword)
}

func TestLogin_RejectedCarriesMessage(t *testing.T) {
	f := &fakeAPI{loginResp: &api.LoginResponse{Result: api.Result{Message: "Invalid email or password"}}}
	c := &GRPCClient{client: f}

	_, _, err := c.Login(context.Background(), validation.LoginForm{Email: "a@b.com", Password: "x"})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Invalid email or password", rej.Message)
}

func TestLogin_OK(t *testing.T) {
	f := &fakeAPI{loginResp: &api.LoginResponse{Result: api.Result{Success: true}, User: &api.User{Email: "a@b.com"}, Token: "tok"}}
	c := &GRPCClient{client: f}

	u, token, err := c.Login(context.Background(), validation.LoginForm{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "a@b.com", f.lastLoginReq.Email)
}

func TestVerifyAndLogout_SendTokenInMetadata(t *testing.T) {
	f := &fakeAPI{
		verifyResp: &api.VerifyTokenResponse{Result: api.Result{Success: true}, User: &api.User{Email: "a@b.com"}},
		logoutResp: &api.LogoutResponse{Result: api.Result{Success: true}},
	}
	c := &GRPCClient{client: f}

	_, err := c.VerifyToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", f.lastToken)

	require.NoError(t, c.Logout(context.Background(), "t2"))
	assert.Equal(t, "t2", f.lastToken)
}

func TestTransportErrorsAreMapped(t *testing.T) {
	f := &fakeAPI{err: status.Error(codes.Unavailable, "down")}
	c := &GRPCClient{client: f}

	_, err := c.VerifyToken(context.Background(), "t")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Logout(context.Background(), "t"), ErrUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPing(t *testing.T) {
	c := &GRPCClient{client: &fakeAPI{pingResp: &api.PingResponse{Status: "OK"}}}
	require.NoError(t, c.Ping(context.Background()))

	c = &GRPCClient{client: &fakeAPI{pingResp: &api.PingResponse{Status: "NOT_OK"}}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestNewAuthClient_CloseIsSafe(t *testing.T) {
	c, err := NewAuthClient("127.0.0.1:1")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	require.NoError(t, (&GRPCClient{}).Close())
}
