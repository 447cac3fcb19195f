package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/xcri/rankings/internal/adapters/urlsync"
	"github.com/xcri/rankings/internal/app"
	"github.com/xcri/rankings/internal/domain/model"
	"github.com/xcri/rankings/internal/present"
)

// ShareBase is the address shareable links are built on.
const ShareBase = "https://xcri.example/rankings"

const sessionHelp = `Intents:
  division <code|short>   gender <M|F>   view <athletes|teamScore|knockout>
  region [name]           conference [name]   search [text]
  page <n>   next   prev   historical [date]   snapshot <date>   live   retry
Commands:
  show   url   calc-date   end   help   quit
`

// interactive is one session run: a controller fed through the ordered
// intent service, with a history sink for the shareable URL.
type interactive struct {
	app     *App
	svc     *app.Service
	ctrl    *app.Controller
	history *urlsync.History
}

func (a *App) runSession(ctx context.Context, args []string) error {
	fs := a.newFlagSet("session")
	query := fs.String("query", "", "shareable query string to start from")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	cache, release, err := a.calcCache(ctx, client)
	if err != nil {
		return err
	}
	defer release()

	hist := urlsync.New(ShareBase, *query)
	ctrl := a.controller(client, hist)
	svc := app.NewService(ctrl,
		app.WithQueueSize(a.cfg.QueueSize),
		app.WithServiceLogger(a.logger.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	if err := ctrl.Hydrate(*query); err != nil {
		return err
	}
	s := &interactive{app: a, svc: svc, ctrl: ctrl, history: hist}
	a.selectLatestSnapshot(ctx, client, ctrl)
	if err := s.show(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(a.out, sessionHelp)
			continue
		case "url":
			fmt.Fprintln(a.out, hist.URL())
			continue
		case "show":
			if err := s.show(); err != nil {
				return err
			}
			continue
		case "calc-date":
			if t, ok := cache.Latest(ctx); ok {
				fmt.Fprintf(a.out, "Rankings calculated %s\n", present.Calculated(t))
			} else {
				fmt.Fprintln(a.out, "Calculation date unknown.")
			}
			continue
		case "end":
			if err := cache.End(ctx); err != nil {
				fmt.Fprintf(a.out, "could not end session: %v\n", err)
			} else {
				fmt.Fprintln(a.out, "Session ended.")
			}
			continue
		}

		in, err := model.Parse(line)
		if err != nil {
			fmt.Fprintf(a.out, "%v (type \"help\")\n", err)
			continue
		}
		if in.Kind == model.KindHistorical && in.Value == "" {
			if date, ok := a.latestSnapshot(ctx, client); ok {
				in = model.New(model.KindSnapshot, date)
			}
		}
		if err := svc.SubmitWait(ctx, in); err != nil {
			fmt.Fprintf(a.out, "rejected: %v\n", err)
			continue
		}
		if err := s.show(); err != nil {
			return err
		}
	}
}

// show settles pending debounce windows and fetches, then renders.
func (s *interactive) show() error {
	s.ctrl.Flush()
	s.ctrl.Wait()
	return present.View(s.app.out, s.ctrl.View())
}
