package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docblog/internal/client/client"
	"github.com/dmitrijs2005/docblog/internal/client/config"
	"github.com/dmitrijs2005/docblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docblog/internal/client/services"
)

type App struct {
	config  *config.Config
	api     client.Client
	session services.SessionService
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing session database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	ss := services.NewSessionService(api, metadata.NewSQLiteRepository(db))

	return &App{
		config:  c,
		api:     api,
		session: ss,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run executes args as a single command, or starts the prompt when args
// is empty. It returns the command's error in single-command mode.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.db.Close()

	if len(args) > 0 {
		if err := dispatch(ctx, a, args[0], args[1:]); err != nil && !errors.Is(err, errQuit) {
			return err
		}
		return nil
	}

	fmt.Fprintln(a.out, "Welcome to blogctl (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.session.Token(ctx)
	return err == nil
}

func (a *App) status(ctx context.Context) string {
	if who := a.session.Whoami(ctx); who != "" {
		return "(" + who + ")"
	}
	return ""
}

// token returns the saved token or explains how to get one.
func (a *App) token(ctx context.Context) (string, error) {
	tok, err := a.session.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: run 'login' first", err)
	}
	return tok, nil
}
