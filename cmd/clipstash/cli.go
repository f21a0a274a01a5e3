package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/clipstash/internal/capture"
	"github.com/hpungsan/clipstash/internal/clipboard"
	"github.com/hpungsan/clipstash/internal/config"
	"github.com/hpungsan/clipstash/internal/errors"
	"github.com/hpungsan/clipstash/internal/logging"
	"github.com/hpungsan/clipstash/internal/mcp"
	"github.com/hpungsan/clipstash/internal/ops"
	"github.com/hpungsan/clipstash/internal/store"
	"github.com/hpungsan/clipstash/internal/web"
)

// maxStdinBytes caps what add reads from stdin.
const maxStdinBytes = 16 << 20

// env carries what the commands share for one process.
type env struct {
	cfg    *config.Config
	stores *store.Lazy

	// openClipboard returns the clipboard source for watch, serve and copy.
	openClipboard func() clipboard.Source
}

func newEnv(baseDir string, cfg *config.Config) *env {
	return &env{
		cfg:    cfg,
		stores: newStores(baseDir, cfg),
		openClipboard: func() clipboard.Source {
			return clipboard.NewSystem(cfg.PollInterval())
		},
	}
}

// store opens the shared store, formatting failures for the CLI.
func (e *env) store() (*store.Store, error) {
	st, err := e.stores.Get()
	if err != nil {
		return nil, outputError(errors.Wrap(err))
	}
	return st, nil
}

// newCLIApp creates the CLI application with all commands. e may be nil
// when only help or version output is needed.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "clipstash",
		Usage:   "Searchable clipboard history",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error"},
			&cli.StringFlag{Name: "log-format", Usage: "Log format: auto|text|json"},
		},
		Before: func(c *cli.Context) error {
			format, level := c.String("log-format"), c.String("log-level")
			if e != nil {
				if format == "" {
					format = e.cfg.LogFormat
				}
				if level == "" {
					level = e.cfg.LogLevel
				}
			}
			logging.Setup(format, level)
			return nil
		},
		Commands: []*cli.Command{
			watchCmd(e),
			serveCmd(e),
			mcpCmd(e),
			addCmd(e),
			searchCmd(e),
			listCmd(e),
			foldersCmd(e),
			getCmd(e),
			countCmd(e),
			pinCmd(e, true),
			pinCmd(e, false),
			moveCmd(e),
			deleteCmd(e),
			copyCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// watchCmd creates the watch command.
func watchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Capture clipboard text into the history until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "serve", Aliases: []string{"s"}, Usage: "Also serve the web UI"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Web UI port (with --serve)"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := e.store()
			if err != nil {
				return err
			}

			src := e.openClipboard()
			defer src.Close()

			l := capture.New(src, st, capture.Options{
				OnError: func(err error) {
					slog.Error("capture failed", "err", err)
				},
				OnCapture: func(content string, created bool) {
					if created {
						slog.Info("new clip", "chars", utf8.RuneCountInString(content))
					}
				},
			})
			if err := l.Start(ctx); err != nil {
				return outputError(err)
			}

			var serveErr chan error
			if c.Bool("serve") {
				srv := web.NewServer(e.stores, src, withPort(e.cfg, c.Int("port")), Version)
				serveErr = make(chan error, 1)
				go func() { serveErr <- web.Run(ctx, srv) }()
			}

			var runErr error
			select {
			case <-ctx.Done():
				if serveErr != nil {
					runErr = <-serveErr
				}
			case runErr = <-serveErr:
				// Server failed to start or stopped on its own
			}

			l.Stop()
			if err := l.Wait(); err != nil && runErr == nil {
				runErr = err
			}

			stats := l.Stats()
			slog.Info("stopped watching",
				"notifications", stats.Notifications,
				"stored", stats.Stored,
				"duplicates", stats.Duplicates,
				"dropped", stats.Dropped,
				"failed", stats.Failed,
			)

			if runErr != nil {
				return outputError(errors.Wrap(runErr))
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			src := e.openClipboard()
			defer src.Close()

			srv := web.NewServer(e.stores, src, withPort(e.cfg, c.Int("port")), Version)
			if err := web.Run(ctx, srv); err != nil {
				return outputError(errors.Wrap(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			warnUnknownTools(e.cfg)
			if err := mcp.Run(e.stores, e.cfg, Version); err != nil {
				return outputError(errors.Wrap(err))
			}
			return nil
		},
	}
}

// addCmd creates the add command.
func addCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add text to the history (from arguments or stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			var content string
			if c.NArg() > 0 {
				content = strings.Join(c.Args().Slice(), " ")
			} else {
				if !stdinHasData(c.App.Reader) {
					return outputError(errors.NewInvalidRequest("text must be given as arguments or piped via stdin"))
				}
				text, err := readStdin(c.App.Reader, maxStdinBytes)
				if err != nil {
					return outputError(err)
				}
				content = text
			}

			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Add(c.Context, st, ops.AddInput{Content: content})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find clips containing text (ASCII letters match either case)",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder to list when query is empty"},
		},
		Action: func(c *cli.Context) error {
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Search(c.Context, st, ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Folder: c.String("folder"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the clips in a folder",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Value: "Inbox", Usage: "Folder name"},
		},
		Action: func(c *cli.Context) error {
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.List(c.Context, st, ops.ListInput{Folder: c.String("folder")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// foldersCmd creates the folders command.
func foldersCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "List folder names",
		Action: func(c *cli.Context) error {
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Folders(c.Context, st)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// getCmd creates the get command.
func getCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one clip",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Get(c.Context, st, ops.GetInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// countCmd creates the count command.
func countCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Count clips, optionally those with exactly the given content",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Exact content to count"},
		},
		Action: func(c *cli.Context) error {
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Count(c.Context, st, ops.CountInput{Content: c.String("content")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// pinCmd creates the pin or unpin command.
func pinCmd(e *env, pinned bool) *cli.Command {
	name, usage := "pin", "Pin a clip so it sorts first"
	if !pinned {
		name, usage = "unpin", "Unpin a clip"
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Pin(c.Context, st, ops.PinInput{ID: id, Pinned: &pinned})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move a clip to a folder",
		ArgsUsage: "<id> <folder>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("folder is required"))
			}
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Move(c.Context, st, ops.MoveInput{
				ID:     id,
				Folder: strings.Join(c.Args().Tail(), " "),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a clip",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}
			st, err := e.store()
			if err != nil {
				return err
			}
			output, err := ops.Delete(c.Context, st, ops.DeleteInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Put a clip back on the clipboard",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}
			st, err := e.store()
			if err != nil {
				return err
			}
			src := e.openClipboard()
			defer src.Close()

			output, err := ops.Copy(c.Context, st, src, ops.CopyInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// Helper functions

// withPort returns cfg with WebPort replaced when port is positive.
func withPort(cfg *config.Config, port int) *config.Config {
	if port <= 0 {
		return cfg
	}
	out := *cfg
	out.WebPort = port
	return &out
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var cErr *errors.ClipError
	if stderrors.As(err, &cErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	if stderrors.Is(err, context.Canceled) {
		return cli.Exit("interrupted", 130)
	}
	return cli.Exit(err.Error(), 1)
}

// parseID reads the first positional argument as a clip id.
func parseID(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id: %q", c.Args().First()))
	}
	return id, nil
}

// stdinHasData returns true if r is piped data rather than a terminal.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r, failing if it exceeds limit bytes.
func readStdin(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return string(data), nil
}
