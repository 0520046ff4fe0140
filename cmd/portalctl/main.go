// Command portalctl sends requests to the gateway as a signed-in user. When
// the session expires mid-run it asks for the password again and replays the
// requests that were waiting.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/session"
)

const maxReauthAttempts = 3

var gatewayURL = "http://localhost:8080"

func main() {
	gatewayFlag := flag.String("gateway", "", "Gateway base URL (or PORTAL_GATEWAY)")
	email := flag.String("email", os.Getenv("PORTAL_EMAIL"), "Account email (or PORTAL_EMAIL)")
	repeat := flag.Int("repeat", 1, "Send the request this many times")
	interval := flag.Duration("interval", 0, "Pause between repeats")
	parallel := flag.Int("parallel", 1, "Concurrent copies of each request")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: portalctl [flags] METHOD PATH [JSON-BODY]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if env := os.Getenv("PORTAL_GATEWAY"); env != "" {
		gatewayURL = strings.TrimRight(env, "/")
	}
	if *gatewayFlag != "" {
		gatewayURL = strings.TrimRight(*gatewayFlag, "/")
	}

	req, err := parseRequest(flag.Args())
	if err != nil || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *email, req, *repeat, *parallel, *interval, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email string, req *models.ProxyRequest, repeat, parallel int, interval, timeout time.Duration) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	log := logger.Sugar()

	client := session.NewClient(gatewayURL, timeout)
	prompter := newTerminalPrompter()
	coord := session.NewCoordinator(client, prompter, log)
	go prompter.loop(ctx, coord, email)

	password, err := readPassword(fmt.Sprintf("Password for %s: ", email))
	if err != nil {
		return err
	}
	login, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if login.MustChangePassword {
		fmt.Fprintln(os.Stderr, "Note: the account must change its password.")
	}

	for i := 0; i < repeat; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		for n := 0; n < parallel; n++ {
			g.Go(func() error {
				resp, err := coord.Do(gctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("%d %s\n", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	return client.Logout(ctx)
}

func parseRequest(args []string) (*models.ProxyRequest, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, errors.New("expected METHOD PATH [JSON-BODY]")
	}

	u, err := url.Parse(args[1])
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}

	req := &models.ProxyRequest{
		Method: strings.ToUpper(args[0]),
		Path:   u.Path,
		Query:  u.Query(),
	}
	if len(args) == 3 {
		req.Body = []byte(args[2])
	}
	return req, nil
}

// terminalPrompter asks for the password on the terminal whenever the
// coordinator opens the prompt. An empty answer cancels the waiting requests.
type terminalPrompter struct {
	open chan struct{}
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{open: make(chan struct{}, 1)}
}

func (p *terminalPrompter) Open() {
	select {
	case p.open <- struct{}{}:
	default:
	}
}

func (p *terminalPrompter) Close() {
	fmt.Fprintln(os.Stderr, "Signed in again, replaying requests.")
}

func (p *terminalPrompter) loop(ctx context.Context, coord *session.Coordinator, email string) {
	for {
		select {
		case <-ctx.Done():
			coord.ClearPendingRequests()
			return
		case <-p.open:
		}

		for attempt := 1; coord.State().IsModalOpen; attempt++ {
			if attempt > maxReauthAttempts {
				coord.ClearPendingRequests()
				break
			}

			fmt.Fprintln(os.Stderr, "Session expired. Please log in again (empty password cancels).")
			password, err := readPassword(fmt.Sprintf("Password for %s: ", email))
			if err != nil || password == "" {
				coord.ClearPendingRequests()
				break
			}
			if _, err = coord.Reauthenticate(ctx, email, password); err != nil {
				fmt.Fprintln(os.Stderr, "Login failed:", err)
			}
		}
	}
}

func readPassword(prompt string) (string, error) {
	if v := os.Getenv("PORTAL_PASSWORD"); v != "" {
		return v, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		return string(raw), err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
