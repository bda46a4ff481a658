package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/query"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/services"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/validation"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

type App struct {
	catalog *services.Catalog
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger

	mu       sync.Mutex
	userName string
}

func NewApp(catalog *services.Catalog, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		catalog: catalog,
		reader:  bufio.NewReader(in),
		out:     out,
		log:     logging.OrNop(log),
	}
}

// Run shows the REPL until the user exits or input ends. The prompt follows
// the session: it is refreshed whenever the current user changes.
func (a *App) Run(ctx context.Context) {
	unsubscribe := a.catalog.Auth.Session().Subscribe(a.sessionChanged)
	defer unsubscribe()

	fmt.Fprintln(a.out, "Product catalog CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) sessionChanged(s query.State[models.CurrentUser]) {
	if !s.HasData {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Data.Authenticated && s.Data.User != nil {
		a.userName = s.Data.User.Username
	} else {
		a.userName = ""
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) isLoggedIn() bool {
	return a.catalog.Auth.LoggedIn()
}

// report prints validation failures field by field. Other errors were
// already shown as notifications and are only logged.
func (a *App) report(ctx context.Context, err error) error {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		for _, f := range verrs.Fields {
			fmt.Fprintf(a.out, "  %s: %s\n", f.Field, f.Message)
		}
		return err
	}
	a.log.Debug(ctx, "command failed", "error", err)
	return err
}
