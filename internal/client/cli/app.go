package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tripauth/internal/client/client"
	"github.com/dmitrijs2005/tripauth/internal/client/config"
	"github.com/dmitrijs2005/tripauth/internal/client/models"
	"github.com/dmitrijs2005/tripauth/internal/client/services"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	reader      *bufio.Reader
	out         io.Writer
	session     *models.Session
}

// appFactory builds an App for a command. Tests replace newApp.
type appFactory func(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error)

var newApp appFactory = NewApp

func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing session file: %w", err)
	}

	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newAppWithService(c, services.NewAuthService(apiClient, db), in, out), nil
}

func newAppWithService(c *config.Config, as services.AuthService, in io.Reader, out io.Writer) *App {
	return &App{config: c, authService: as, reader: bufio.NewReader(in), out: out}
}

func (a *App) Close(ctx context.Context) error {
	return a.authService.Close(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

// restore loads a persisted session, if any, without contacting the server.
func (a *App) restore(ctx context.Context) error {
	s, err := a.authService.Restore(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotLoggedIn) {
			a.session = nil
			return nil
		}
		return err
	}
	a.session = s
	return nil
}

func (a *App) status() string {
	if a.session == nil || a.session.Email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.session.Email)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
