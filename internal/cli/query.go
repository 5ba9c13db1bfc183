package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/litedocs/internal/explorer"
	"github.com/roach88/litedocs/internal/extjson"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Page      int
	PageSize  int
	CountOnly bool
	Watch     bool
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Collection string            `json:"collection"`
	Filter     string            `json:"filter"`
	Count      int               `json:"count"`
	Page       int               `json:"page,omitempty"`
	PageSize   int               `json:"page_size,omitempty"`
	PageCount  int               `json:"page_count"`
	Documents  []json.RawMessage `json:"documents,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <collection> [filter]",
		Short: "Show one page of the documents matching a filter",
		Long: `Run a filter against a collection and print one page of results.

The filter is an extended-JSON document. Plain fields match by equality,
dotted keys reach into nested documents, and the operators $gt $gte $lt
$lte $between $in $ne $or $like and $contains build richer conditions.
An omitted or empty filter matches every document.

With --watch the command keeps running and prints the page again whenever
the database changes and the page contents differ.

Examples:
  litedocs query people
  litedocs query people '{"age": {"$gt": 40}}' --page 2 --page-size 10
  litedocs query people '{"address.city": "London"}' --count
  litedocs query people --watch`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 2 {
				filter = args[1]
			}
			return runQuery(opts, cmd, args[0], filter)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "documents per page; defaults to the config")
	cmd.Flags().BoolVar(&opts.CountOnly, "count", false, "only print the number of matching documents")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-print the page when the database changes")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command, collection, filter string) error {
	formatter := opts.formatter(cmd)

	if opts.Page < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --page %d: must be at least 1", opts.Page))
	}
	pageSize := opts.Config.Query.PageSize
	if opts.PageSize != 0 {
		pageSize = opts.PageSize
	}
	cfg := opts.Config
	cfg.Query.PageSize = pageSize
	if err := cfg.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, "invalid --page-size", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	session := explorer.NewSession(explorer.StoreDatabase(st),
		explorer.WithLogger(opts.Logger),
		explorer.WithPageSize(pageSize),
		explorer.WithFormat(opts.Config.Format()),
	)
	q := session.OpenQuery(collection)
	q.Filter = filter
	q.Page = opts.Page

	ctx := commandContext(cmd)

	out, err := renderQuery(ctx, q, opts.Format, opts.CountOnly)
	if err != nil {
		return formatter.Fail(ExitFailure, "query failed", err)
	}
	fmt.Fprint(formatter.Writer, out)
	formatter.VerboseLog("%d document(s), page %d of %d", q.Count(), q.Page, q.PageCount())

	if !opts.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	changes := &changeDetector{}
	changes.Changed(out)
	return watchDatabase(ctx, opts.Config.Database, watchDebounce, func() {
		out, err := renderQuery(ctx, q, opts.Format, opts.CountOnly)
		if err != nil {
			opts.Logger.Warn("query refresh failed", "collection", collection, "error", err)
			return
		}
		if changes.Changed(out) {
			fmt.Fprint(formatter.Writer, out)
		}
	})
}

const watchDebounce = 100 * time.Millisecond

// renderQuery runs q and returns exactly what the command prints.
func renderQuery(ctx context.Context, q *explorer.Query, format string, countOnly bool) (string, error) {
	if err := q.Run(ctx, countOnly); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	f := &OutputFormatter{Format: format, Writer: &buf}

	if format != "json" {
		if countOnly {
			_ = f.Success(q.Count())
		} else if text := q.Text(); text == "" {
			_ = f.Success("no documents")
		} else {
			_ = f.Success(strings.TrimSuffix(text, "\n"))
		}
		return buf.String(), nil
	}

	result := QueryResult{
		Collection: q.Collection(),
		Filter:     q.Filter,
		Count:      q.Count(),
		PageCount:  q.PageCount(),
	}
	if !countOnly {
		result.Page = q.Page
		result.PageSize = q.PageSize
		result.Documents = []json.RawMessage{}
		for _, doc := range q.Results() {
			text := extjson.RenderDocument(doc, extjson.JSONCompatible)
			result.Documents = append(result.Documents, json.RawMessage(text))
		}
	}
	if err := f.Success(result); err != nil {
		return "", err
	}
	return buf.String(), nil
}
