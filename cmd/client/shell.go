package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/account"
	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/authbus"
	"github.com/atinyakov/ContentAI/internal/client/entitlement"
	"github.com/atinyakov/ContentAI/internal/client/prompt"
	"github.com/atinyakov/ContentAI/internal/client/storage"
	"github.com/atinyakov/ContentAI/internal/client/watcher"
)

const helpText = `Available commands:
  signup                 create an account
  login                  log in
  logout                 log out
  whoami                 show the stored session
  refresh                reload profile and plan from the server
  check [generate|trends] check access to a paid feature
  subscribe [plan] [days] change plan (default: premium 30)
  generate               generate content ideas
  trends                 show trending hashtags and topics
  results                show the last generated content
  help, exit`

// shell is the interactive client. Every view re-reads the session store;
// nothing is cached here.
type shell struct {
	out      io.Writer
	in       *prompt.Prompter
	sessions *storage.SessionStore
	svc      *account.Service
	guard    *entitlement.Guard
	bus      *authbus.Bus
	watcher  *watcher.Watcher
	lang     string
	log      *zap.Logger
}

// run reads commands until exit, end of input or ctx is done.
func (s *shell) run(ctx context.Context) {
	release := s.watcher.Acquire()
	defer release()

	var mu sync.Mutex
	wasLoggedIn := s.sessions.Present(ctx)
	unsubscribe := s.bus.Subscribe(func() {
		mu.Lock()
		defer mu.Unlock()
		sess, ok := s.sessions.Get(context.Background())
		switch {
		case ok && !wasLoggedIn:
			fmt.Fprintf(s.out, "\n[session] logged in as %s\n", sess.Email)
		case !ok && wasLoggedIn:
			fmt.Fprintln(s.out, "\n[session] logged out")
		}
		wasLoggedIn = ok
	})
	defer unsubscribe()

	for ctx.Err() == nil {
		line, ok := s.in.Line("contentai> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		s.dispatch(ctx, args)
	}
}

func (s *shell) dispatch(ctx context.Context, args []string) {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "signup":
		req, err := s.in.Signup()
		if err != nil {
			s.fail(err)
			return
		}
		resp, err := s.svc.Signup(ctx, req)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Account created (id %d). Use 'login' to continue.\n", resp.UserID)
	case "login":
		creds, err := s.in.Credentials()
		if err != nil {
			s.fail(err)
			return
		}
		if _, err := s.svc.Login(ctx, creds); err != nil {
			s.fail(err)
		}
	case "logout":
		if err := s.svc.Logout(ctx); err != nil {
			s.fail(err)
		}
	case "whoami":
		s.whoami(ctx)
	case "refresh":
		if _, err := s.svc.Refresh(ctx); err != nil {
			s.fail(err)
			return
		}
		s.whoami(ctx)
	case "check":
		capability := entitlement.CapabilityGenerate
		if len(args) > 1 {
			c, ok := entitlement.ParseCapability(args[1])
			if !ok {
				fmt.Fprintln(s.out, "Usage: check [generate|trends]")
				return
			}
			capability = c
		}
		if v, ok := s.authorize(ctx, capability); ok {
			fmt.Fprintf(s.out, "Access to %s: %s (confirmed: %t)\n", capability, v.Decision, v.Confirmed)
		}
	case "subscribe":
		plan, days := "premium", 0
		if len(args) > 1 {
			plan = args[1]
		}
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Fprintln(s.out, "Usage: subscribe [free|premium] [days]")
				return
			}
			days = n
		}
		sess, err := s.svc.Subscribe(ctx, plan, days)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Plan: %s %s\n", sess.SubscriptionType, sess.SubscriptionEnd)
	case "generate":
		if _, ok := s.authorize(ctx, entitlement.CapabilityGenerate); !ok {
			return
		}
		req, err := s.in.Generate(s.lang)
		if err != nil {
			s.fail(err)
			return
		}
		if _, err := s.svc.Generate(ctx, req); err != nil {
			s.fail(err)
			return
		}
		s.results(ctx)
	case "trends":
		if _, ok := s.authorize(ctx, entitlement.CapabilityTrends); !ok {
			return
		}
		niche, _ := s.in.Line("Niche: ")
		if _, err := s.svc.Trends(ctx, api.TrendsRequest{Niche: niche}); err != nil {
			s.fail(err)
			return
		}
		s.results(ctx)
	case "results":
		s.results(ctx)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

// authorize runs an entitlement check and explains a denial. ok is true
// when the caller may go ahead.
func (s *shell) authorize(ctx context.Context, capability entitlement.Capability) (entitlement.Verdict, bool) {
	c := s.guard.Start(ctx, capability)
	if c.PreviouslyUnconfirmed() {
		fmt.Fprintln(s.out, "Note: your plan could not be confirmed last time.")
	}
	if c.Optimistic() {
		fmt.Fprintln(s.out, "Checking your plan...")
	}
	v, err := c.Wait(ctx)
	if err != nil {
		s.fail(err)
		return v, false
	}
	switch {
	case v.LoginRequired():
		fmt.Fprintln(s.out, "Please log in first.")
		return v, false
	case v.Decision == entitlement.Denied && v.UpgradeRequired():
		fmt.Fprintln(s.out, "A premium plan is required. Use 'subscribe premium'.")
		return v, false
	case v.Decision == entitlement.Denied:
		s.fail(v.Reason)
		return v, false
	case !v.Confirmed:
		fmt.Fprintln(s.out, "Warning: server unreachable, using your cached plan.")
	}
	return v, true
}

func (s *shell) whoami(ctx context.Context) {
	sess, ok := s.sessions.Get(ctx)
	if !ok {
		fmt.Fprintln(s.out, "Not logged in.")
		return
	}
	plan := sess.SubscriptionType
	if plan == "" {
		plan = "free"
	}
	fmt.Fprintf(s.out, "%s (id %d) plan=%s subscribed=%t admin=%t\n",
		sess.Email, sess.UserID, plan, sess.IsSubscribed, sess.IsAdmin)
}

func (s *shell) results(ctx context.Context) {
	res, redirect := s.svc.Results(ctx)
	switch redirect {
	case account.RedirectLogin:
		fmt.Fprintln(s.out, "Please log in first.")
		return
	case account.RedirectGenerate:
		fmt.Fprintln(s.out, "Nothing generated yet. Use 'generate'.")
		return
	}
	for i, idea := range res.Ideas {
		fmt.Fprintf(s.out, "%d. %s\n   %s\n", i+1, idea.Title, idea.Description)
		if len(idea.Hashtags) > 0 {
			fmt.Fprintf(s.out, "   %s\n", strings.Join(idea.Hashtags, " "))
		}
	}
	if len(res.Hashtags) > 0 {
		fmt.Fprintf(s.out, "Hashtags: %s\n", strings.Join(res.Hashtags, " "))
	}
	for _, t := range res.Trends {
		fmt.Fprintf(s.out, "- %s\n", t)
	}
}

// fail prints err the way the user should see it.
func (s *shell) fail(err error) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrLoginRequired), errors.Is(err, api.ErrSessionExpired):
		fmt.Fprintln(s.out, "Please log in first.")
	case errors.As(err, &apiErr) && apiErr.Message != "":
		fmt.Fprintf(s.out, "Error: %s\n", apiErr.Message)
	case errors.Is(err, api.ErrRequestFailed):
		fmt.Fprintln(s.out, "Error: the server could not be reached. Try again.")
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	s.log.Debug("command failed", zap.Error(err))
}
