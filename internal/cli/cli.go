// Package cli is the command-line front end: one subcommand per screen of
// the finance tracker.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/infra/observability"
	"github.com/boddenberg/fintrack-go/internal/infra/resilience"
	"github.com/boddenberg/fintrack-go/internal/port"
	"github.com/boddenberg/fintrack-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrFailed is returned after the failure has already been reported on stderr.
var ErrFailed = errors.New("command failed")

// API is the slice of the API client the commands call directly.
type API interface {
	port.AccountsAPI
	port.CategoriesAPI
	port.TransactionsAPI
	port.ReportsAPI
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// BreakerState reports the transport circuit breaker state.
type BreakerState interface {
	State() string
}

// Deps wires the application together.
type Deps struct {
	API       API
	Session   *service.SessionService
	Dashboard *service.DashboardService
	Metrics   *observability.Metrics
	Breaker   BreakerState // optional
	Retry     resilience.Config
	Logger    *zap.Logger
}

// App runs one command per Run call.
type App struct {
	deps Deps
}

func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Retry.ShouldRetry == nil {
		deps.Retry.ShouldRetry = resilience.Retryable
	}
	return &App{deps: deps}
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, st *streams, args []string) error
}

// streams carries the I/O of one invocation.
type streams struct {
	stdin  io.Reader
	lines  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a *App) commands() []command {
	return []command{
		{"login", "login [-u user] [-p password]", a.login},
		{"logout", "logout", a.logout},
		{"register", "register -u user -email addr [-name full name] [-p password]", a.register},
		{"forgot", "forgot -email addr", a.forgot},
		{"whoami", "whoami", a.whoami},
		{"password", "password", a.password},
		{"profile", "profile [-name full name] [-email addr]", a.profile},
		{"accounts", "accounts [list|add|edit|rm|suggest]", a.accounts},
		{"categories", "categories [list|add|edit|rm|suggest]", a.categories},
		{"tx", "tx [list|add|edit|rm|suggest]", a.transactions},
		{"dashboard", "dashboard [-fresh]", a.dashboard},
		{"report", "report [-start YYYY-MM-DD] [-end YYYY-MM-DD]", a.report},
		{"health", "health", a.health},
	}
}

// Run parses global flags and dispatches to a subcommand. Failures are
// printed to stderr as the backend's detail message and ErrFailed is returned.
func (a *App) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	stats := fs.Bool("stats", false, "print client metrics after the command")
	fs.Usage = func() { a.usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		a.usage(stderr)
		return flag.ErrHelp
	}

	var cmd *command
	for _, c := range a.commands() {
		if c.name == rest[0] {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		a.usage(stderr)
		return ErrFailed
	}

	st := &streams{stdin: stdin, lines: bufio.NewReader(stdin), stdout: stdout, stderr: stderr}
	err := cmd.run(ctx, st, rest[1:])
	if *stats {
		a.printStats(stdout)
	}
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	report(stderr, err)
	a.deps.Logger.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
	return ErrFailed
}

func (a *App) usage(w io.Writer) {
	fmt.Fprintln(w, "usage: fintrack [-stats] <command> [args]")
	fmt.Fprintln(w, "commands:")
	for _, c := range a.commands() {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

// report prints what the user should read: the backend's detail for API
// failures, the field for validation failures.
func report(w io.Writer, err error) {
	var (
		apiErr   *domain.APIError
		valErr   *domain.ErrValidation
		noSesErr *domain.ErrNoSession
	)
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(w, "error: %s\n", apiErr.Detail)
		if apiErr.IsUnauthorized() {
			fmt.Fprintln(w, "hint: run `fintrack login`")
		}
	case errors.As(err, &valErr):
		fmt.Fprintf(w, "error: %s: %s\n", valErr.Field, valErr.Message)
	case errors.As(err, &noSesErr):
		fmt.Fprintln(w, "error: not logged in, run `fintrack login`")
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

// read runs an idempotent call, retrying transport failures and 5xx when
// retries are configured.
func (a *App) read(ctx context.Context, fn func() error) error {
	if a.deps.Retry.MaxRetries <= 0 {
		return fn()
	}
	return resilience.RetryWithBackoff(ctx, a.deps.Retry, fn)
}

func (a *App) printStats(w io.Writer) {
	if a.deps.Metrics == nil {
		return
	}
	s := a.deps.Metrics.Snapshot("transactions")
	fmt.Fprintf(w, "\nrequests: %d  errors: %d (%.0f%%)\n", s.Requests, s.Errors, s.ErrorRate*100)
	fmt.Fprintf(w, "cache: %d hits, %d misses, %d invalidations (hit rate %.0f%%)\n",
		s.CacheHits, s.CacheMisses, s.CacheClears, s.CacheHitRate*100)
	if len(s.ErrorsByClass) > 0 {
		classes := make([]string, 0, len(s.ErrorsByClass))
		for k := range s.ErrorsByClass {
			classes = append(classes, k)
		}
		sort.Strings(classes)
		for _, k := range classes {
			fmt.Fprintf(w, "  %s: %d\n", k, s.ErrorsByClass[k])
		}
	}
	if a.deps.Breaker != nil {
		fmt.Fprintf(w, "circuit breaker: %s\n", a.deps.Breaker.State())
	}
}

// --- input helpers ---

func newFlags(name string, st *streams) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(st.stderr)
	return fs
}

func (st *streams) prompt(label string) (string, error) {
	fmt.Fprint(st.stdout, label)
	line, err := st.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line for pipes and tests.
func (st *streams) promptPassword(label string) (string, error) {
	fmt.Fprint(st.stdout, label)
	if f, ok := st.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(st.stdout)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := st.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseID(args []string, what string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, &domain.ErrValidation{Field: "id", Message: what + " id required"}
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, nil, &domain.ErrValidation{Field: "id", Message: fmt.Sprintf("invalid %s id %q", what, args[0])}
	}
	return id, args[1:], nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func requireSession(s *service.SessionService) error {
	if !s.LoggedIn() {
		return &domain.ErrNoSession{}
	}
	return nil
}
