// Package cli implements the lessondesk command line client. Every data
// command goes through the session gateway, so expired sessions are
// refreshed transparently and reported uniformly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aussiebroadwan/lessondesk/pkg/gateway"
	"github.com/aussiebroadwan/lessondesk/pkg/session/drivers/sqlite"
	"github.com/aussiebroadwan/lessondesk/pkg/slogx"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitExpired = 2
	ExitUsage   = 64
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

const expiredMessage = "session expired, please log in again"

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, c *CLI, args []string) error
}

var commands = map[string]command{
	"login":   {"login -u USERNAME [-p PASSWORD]", runLogin},
	"logout":  {"logout", runLogout},
	"whoami":  {"whoami", runWhoami},
	"get":     {"get PATH", runRead(gateway.Get[rawJSON])},
	"delete":  {"delete PATH", runRead(gateway.Delete[rawJSON])},
	"post":    {"post PATH JSON|-", runWrite(gateway.Post[rawJSON])},
	"put":     {"put PATH JSON|-", runWrite(gateway.Put[rawJSON])},
	"patch":   {"patch PATH JSON|-", runWrite(gateway.Patch[rawJSON])},
	"upload":  {"upload PATH field=value... field=@file...", runUpload},
	"version": {"version", runVersion},
}

// CLI holds the configuration and I/O of one invocation.
type CLI struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	gw *gateway.Gateway
}

func New(cfg Config, stdin io.Reader, stdout, stderr io.Writer) *CLI {
	return &CLI{
		cfg:    cfg,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slogx.New(slogx.Config{
			Service: "lessondesk",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Writer:  stderr,
		}),
	}
}

// Run executes args (without the program name) and returns the process
// exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		c.usage()
		return ExitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
		c.usage()
		return ExitUsage
	}

	if args[0] != "version" {
		closeStore, err := c.openGateway(ctx)
		if err != nil {
			fmt.Fprintf(c.stderr, "error: %v\n", err)
			return ExitError
		}
		defer closeStore()
	}

	err := cmd.run(ctx, c, args[1:])
	return c.exitCode(cmd, err)
}

func (c *CLI) exitCode(cmd command, err error) int {
	var apiErr *gateway.APIError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.stderr, "usage: lessondesk %s\n", cmd.usage)
		return ExitUsage
	case errors.Is(err, gateway.ErrSessionExpired):
		fmt.Fprintln(c.stderr, expiredMessage)
		return ExitExpired
	case errors.As(err, &apiErr):
		fmt.Fprintln(c.stderr, apiErr.Message)
		return ExitError
	default:
		fmt.Fprintf(c.stderr, "error: %v\n", err)
		return ExitError
	}
}

func (c *CLI) openGateway(ctx context.Context) (func(), error) {
	if dir := filepath.Dir(c.cfg.SessionDB); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}
	st, err := sqlite.Open(c.cfg.SessionDB, sqlite.WithTTL(c.cfg.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if n, err := st.DeleteExpired(ctx); err != nil {
		c.logger.Warn("failed to purge expired session entries", "err", err)
	} else if n > 0 {
		c.logger.Debug("purged expired session entries", "count", n)
	}

	opts := []gateway.Option{
		gateway.WithLogger(c.logger),
		gateway.WithHTTPClient(&http.Client{Timeout: c.cfg.Timeout}),
	}
	if c.cfg.RateLimit > 0 {
		opts = append(opts, gateway.WithRateLimit(c.cfg.RateLimit, max(1, int(c.cfg.RateLimit))))
	}
	c.gw = gateway.New(c.cfg.APIURL, st, opts...)

	return func() {
		if err := st.Close(); err != nil {
			c.logger.Warn("failed to close session store", "err", err)
		}
	}, nil
}

func (c *CLI) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: lessondesk COMMAND [ARGS]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	fmt.Fprint(c.stderr, b.String())
}
