package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/common-nighthawk/go-figure"

	"github.com/aussiebroadwan/lessondesk/pkg/gateway"
	"github.com/aussiebroadwan/lessondesk/pkg/session"
)

type rawJSON = json.RawMessage

type (
	readFunc  func(ctx context.Context, g *gateway.Gateway, path string) (gateway.Result[rawJSON], error)
	writeFunc func(ctx context.Context, g *gateway.Gateway, path string, body any) (gateway.Result[rawJSON], error)
)

func (c *CLI) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func runLogin(ctx context.Context, c *CLI, args []string) error {
	fs := c.flagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil || *username == "" || fs.NArg() > 0 {
		return errUsage
	}

	if *password == "" {
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	user, err := c.gw.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func runLogout(ctx context.Context, c *CLI, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	if err := c.gw.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "logged out")
	return nil
}

func runWhoami(ctx context.Context, c *CLI, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	user, err := c.gw.CurrentUser(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return errors.New("not logged in")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s (%s)\n", user.Username, user.Role)
	return nil
}

func runRead(fn readFunc) func(context.Context, *CLI, []string) error {
	return func(ctx context.Context, c *CLI, args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		res, err := fn(ctx, c.gw, args[0])
		if err != nil {
			return err
		}
		return c.printResult(res)
	}
}

func runWrite(fn writeFunc) func(context.Context, *CLI, []string) error {
	return func(ctx context.Context, c *CLI, args []string) error {
		if len(args) != 2 {
			return errUsage
		}
		body, err := c.readBody(args[1])
		if err != nil {
			return err
		}
		res, err := fn(ctx, c.gw, args[0], body)
		if err != nil {
			return err
		}
		return c.printResult(res)
	}
}

func runUpload(ctx context.Context, c *CLI, args []string) error {
	if len(args) < 2 {
		return errUsage
	}

	form := gateway.NewForm()
	for _, arg := range args[1:] {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return errUsage
		}
		path, isFile := strings.CutPrefix(value, "@")
		if !isFile {
			form.Set(field, value)
			continue
		}
		if err := addFile(form, field, path); err != nil {
			return err
		}
	}

	res, err := gateway.Upload[rawJSON](ctx, c.gw, args[0], form)
	if err != nil {
		return err
	}
	return c.printResult(res)
}

func addFile(form *gateway.Form, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return form.AddFile(field, filepath.Base(path), f)
}

func runVersion(_ context.Context, c *CLI, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	fmt.Fprint(c.stdout, figure.NewFigure("lessondesk", "small", true).String())
	fmt.Fprintf(c.stdout, "\nlessondesk %s\n", BuildVersion)
	return nil
}

// readBody takes a JSON document from arg, or from stdin when arg is "-".
func (c *CLI) readBody(arg string) (rawJSON, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(c.stdin); err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
	if !json.Valid(data) {
		return nil, errors.New("body is not valid JSON")
	}
	return rawJSON(data), nil
}

func (c *CLI) printResult(res gateway.Result[rawJSON]) error {
	body, ok := res.Value()
	if !ok {
		return gateway.ErrSessionExpired
	}
	if len(body) == 0 {
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	out.WriteByte('\n')
	_, err := c.stdout.Write(out.Bytes())
	return err
}
