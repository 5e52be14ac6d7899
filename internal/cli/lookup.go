package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/actionz"
)

type lookupOptions struct {
	cfg             actionz.FetchConfig
	interval        time.Duration
	timeout         time.Duration
	transportErrors bool
}

// statusLine is one printed status event.
type statusLine struct {
	Status actionz.Status `json:"status"`
	Value  any            `json:"value"`
}

func newLookupCmd(a *app) *cobra.Command {
	var opts lookupOptions

	cmd := &cobra.Command{
		Use:   "lookup TEXT...",
		Short: "Type text into a field wired to a fetch pipeline and print its status events",
		Example: "  actionz lookup --base-url http://localhost:8080/lookup --key q cat dog\n" +
			"  actionz lookup --base-url http://localhost:8080/lookup --key q --params limit=5 --debounce 200ms hello",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), a, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.cfg.BaseURL, "base-url", "", "Lookup endpoint without query string (required)")
	cmd.Flags().StringVar(&opts.cfg.QueryParamKey, "key", "", "Query parameter carrying the typed value")
	cmd.Flags().StringVar(&opts.cfg.QueryParams, "params", "", "Static query fragment, e.g. lang=en&limit=5")
	cmd.Flags().DurationVar(&opts.cfg.DebounceTime, "debounce", actionz.DefaultFetchDebounce, "Settle time before a lookup")
	cmd.Flags().DurationVar(&opts.interval, "interval", 80*time.Millisecond, "Delay between simulated keystrokes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout and wait limit per text")
	cmd.Flags().BoolVar(&opts.transportErrors, "transport-errors", false, "Report transport failures as ERROR")
	_ = cmd.MarkFlagRequired("base-url")
	return cmd
}

func runLookup(ctx context.Context, a *app, opts lookupOptions, texts []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	node := actionz.NewNode("")
	settled := make(chan struct{}, 1)

	var mu sync.Mutex
	enc := json.NewEncoder(a.out)
	remove := node.AddEventListener(actionz.EventFetchStatus, func(ev actionz.Event) {
		st, ok := ev.Detail.(actionz.StatusEvent)
		if !ok {
			return
		}
		value := st.Value
		if err, ok := value.(error); ok {
			value = err.Error()
		}

		mu.Lock()
		_ = enc.Encode(statusLine{Status: st.Status, Value: value})
		mu.Unlock()

		if st.Status.Terminal() {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	})
	defer remove()

	fetchOpts := []actionz.Option{
		actionz.WithLogger(a.logger),
		actionz.WithFetcher(actionz.NewHTTPFetcher(&http.Client{Timeout: opts.timeout})),
	}
	if opts.transportErrors {
		fetchOpts = append(fetchOpts, actionz.WithTransportErrors())
	}

	p, err := actionz.AttachFetch(node, opts.cfg, fetchOpts...)
	if err != nil {
		return err
	}
	defer p.Detach()

	for _, text := range texts {
		if err := typeText(ctx, node, text, opts.interval); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		select {
		case <-settled:
		case <-time.After(p.Config().DebounceTime + opts.timeout):
			a.logger.Warn("no answer before timeout", zap.String("text", text))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// typeText feeds text into node one keystroke at a time. An empty text
// clears the field.
func typeText(ctx context.Context, node *actionz.Node, text string, interval time.Duration) error {
	runes := []rune(text)
	if len(runes) == 0 {
		node.Input("")
	}
	for i := 1; i <= len(runes); i++ {
		node.Input(string(runes[:i]))
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
