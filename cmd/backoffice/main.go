package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/forgo/backoffice/api/internal/config"
	"github.com/forgo/backoffice/api/pkg/datatable"
)

// errReported marks failures already shown to the operator through a
// notification or field errors
var errReported = errors.New("reported")

func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

// app carries what every subcommand needs
type app struct {
	client   *datatable.Client
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
	notifier datatable.Notifier
	logger   *slog.Logger
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("backoffice", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr("BACKOFFICE_API_URL", "http://localhost:8080"), "Base URL of the back-office API")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	idempotency := fs.Bool("idempotency", true, "Send an Idempotency-Key with create and update requests")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) < 2 {
		usage(fs)
		return 2
	}

	var cmds map[string]command
	switch rest[0] {
	case "customers", "customer":
		cmds = commands(customerEntity)
	case "users", "user":
		cmds = commands(userEntity)
	default:
		fmt.Fprintf(stderr, "Unknown resource %q (expected customers or users)\n", rest[0])
		return 2
	}
	cmd, ok := cmds[rest[1]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q (expected list, get, create, update or delete)\n", rest[1])
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))

	opts := []datatable.Option{datatable.WithHTTPClient(&http.Client{Timeout: *timeout})}
	if *idempotency {
		opts = append(opts, datatable.WithIdempotencyKeys())
	}
	client, err := datatable.NewClient(*apiURL, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	a := &app{
		client:   client,
		out:      stdout,
		errOut:   stderr,
		in:       bufio.NewReader(stdin),
		notifier: datatable.LogNotifier{Logger: logger},
		logger:   logger,
	}
	if err := cmd(ctx, a, rest[2:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errReported):
			return 1
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage: backoffice [flags] <customers|users> <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list   [-page N] [-page-size N] [-sort column] [-order asc|desc] [-search text]")
	fmt.Fprintln(w, "  get    <id>")
	fmt.Fprintln(w, "  create -name ... [-email ...]")
	fmt.Fprintln(w, "  update <id> [-field value ...]")
	fmt.Fprintln(w, "  delete <id> [-yes]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newFlagSet(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// ============================================================================
// Subcommands
// ============================================================================

// defaultSortColumn is the column the API orders by when no sort is given
const defaultSortColumn = "name"

func runList[T any](ctx context.Context, a *app, e entity[T], args []string) error {
	fs := newFlagSet(e.name+"s list", a)
	page := fs.Int("page", 1, "Page number")
	pageSize := fs.Int("page-size", datatable.DefaultPageSize, "Records per page")
	sortBy := fs.String("sort", "", "Column to sort by")
	order := fs.String("order", string(datatable.Asc), "Sort direction (asc or desc)")
	search := fs.String("search", "", "Case-insensitive search text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state := datatable.NewState(*pageSize)
	column := *sortBy
	switch strings.ToLower(*order) {
	case string(datatable.Asc):
	case string(datatable.Desc):
		if column == "" {
			column = defaultSortColumn
		}
	default:
		return fmt.Errorf("invalid order %q", *order)
	}
	if column != "" {
		state = datatable.Reduce(state, datatable.ToggleSort(column))
		if strings.EqualFold(*order, string(datatable.Desc)) {
			state = datatable.Reduce(state, datatable.ToggleSort(column))
		}
	}
	if *search != "" {
		state = datatable.Reduce(state, datatable.CommitSearch(*search))
	}
	state = datatable.Reduce(state, datatable.SetPage(*page))

	table := datatable.NewTable(datatable.TableConfig[T]{
		Source:   datatable.NewResource[T](a.client, e.endpoint),
		Columns:  e.columns,
		Initial:  state,
		Notifier: a.notifier,
		Logger:   a.logger,
	})
	if err := table.Load(ctx); err != nil {
		return reported(err)
	}
	return renderTable(a.out, table.View())
}

func runGet[T any](ctx context.Context, a *app, e entity[T], args []string) error {
	id, _, err := parseID(args)
	if err != nil {
		return err
	}
	rec, err := datatable.NewResource[T](a.client, e.endpoint).Get(ctx, id)
	if err != nil {
		a.notifier.Notify(datatable.Notification{Level: datatable.LevelError, Message: describe(e, id, err)})
		return reported(err)
	}
	return renderRecord(a.out, e.columns, *rec)
}

func runCreate[T any](ctx context.Context, a *app, e entity[T], args []string) error {
	fs := newFlagSet(e.name+"s create", a)
	collect := fieldFlags(fs, e.fields)
	if err := fs.Parse(args); err != nil {
		return err
	}

	dialog := newDialog(a, e)
	defaults := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		defaults[f.name] = ""
	}
	dialog.OpenCreate(defaults)

	rec, err := dialog.Submit(ctx, collect())
	if err != nil {
		printFieldErrors(a.errOut, dialog)
		return reported(err)
	}
	return renderRecord(a.out, e.columns, *rec)
}

func runUpdate[T any](ctx context.Context, a *app, e entity[T], args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet(e.name+"s update", a)
	collect := fieldFlags(fs, e.fields)
	if err := fs.Parse(rest); err != nil {
		return err
	}

	current, err := datatable.NewResource[T](a.client, e.endpoint).Get(ctx, id)
	if err != nil {
		a.notifier.Notify(datatable.Notification{Level: datatable.LevelError, Message: describe(e, id, err)})
		return reported(err)
	}

	dialog := newDialog(a, e)
	dialog.OpenEdit(e.id(*current), *current)

	rec, err := dialog.Submit(ctx, collect())
	if err != nil {
		printFieldErrors(a.errOut, dialog)
		return reported(err)
	}
	return renderRecord(a.out, e.columns, *rec)
}

func runDelete[T any](ctx context.Context, a *app, e entity[T], args []string) error {
	id, rest, err := parseID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet(e.name+"s delete", a)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	confirm := datatable.NewDeleteConfirmation(datatable.DeleteConfig{
		Deleter:  datatable.NewResource[T](a.client, e.endpoint),
		Notifier: a.notifier,
		Logger:   a.logger,
	})
	confirm.Request(id)

	if !*yes {
		fmt.Fprintf(a.out, "Delete %s %d? This action cannot be undone. [y/N]: ", e.name, id)
		answer, _ := a.in.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			confirm.Cancel()
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	if err := confirm.Confirm(ctx); err != nil {
		return reported(err)
	}
	return nil
}

func newDialog[T any](a *app, e entity[T]) *datatable.FormDialog[T] {
	return datatable.NewFormDialog(datatable.FormConfig[T]{
		Saver:        datatable.NewResource[T](a.client, e.endpoint),
		Schema:       e.schema,
		UpdateSchema: e.updateSchema,
		Values:       e.values,
		Notifier:     a.notifier,
		Logger:       a.logger,
	})
}

func describe[T any](e entity[T], id int64, err error) string {
	if datatable.IsNotFound(err) {
		return fmt.Sprintf("%s%s %d not found", strings.ToUpper(e.name[:1]), e.name[1:], id)
	}
	var apiErr *datatable.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return fmt.Sprintf("Request failed: %v", err)
}

func printFieldErrors[T any](w io.Writer, dialog *datatable.FormDialog[T]) {
	for _, f := range dialog.ErrorFields() {
		fmt.Fprintf(w, "  %s: %s\n", f, dialog.ErrorFor(f))
	}
}
