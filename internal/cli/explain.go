package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/litedocs/internal/query"
	"github.com/roach88/litedocs/internal/querysql"
)

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	Predicate string   `json:"predicate"`
	Tree      string   `json:"tree"`
	Fields    []string `json:"fields"`
	Pushdown  *Plan    `json:"pushdown,omitempty"`
}

// Plan is the SQL condition a filter narrows candidate rows with.
type Plan struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
	Exact  bool   `json:"exact"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [filter]",
		Short: "Show how a filter is compiled",
		Long: `Compile a filter and print the resulting predicate tree together with
the SQL used to narrow candidate rows.

When the SQL is marked inexact every candidate row is checked again against
the predicate; when no part of the filter can be expressed in SQL the whole
collection is scanned.

Examples:
  litedocs explain '{"age": {"$between": [18, 65]}, "name": {"$like": "A"}}'
  litedocs explain '{"_id": ObjectId("c969ce7c86ebf1670512579b")}' --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return runExplain(rootOpts, cmd, filter)
		},
	}
	return cmd
}

func runExplain(opts *RootOptions, cmd *cobra.Command, filter string) error {
	formatter := opts.formatter(cmd)

	p, err := query.CompileText(filter)
	if err != nil {
		return formatter.Fail(ExitFailure, "invalid filter", err)
	}

	result := ExplainResult{
		Predicate: p.String(),
		Tree:      query.Describe(p),
		Fields:    query.Fields(p),
	}

	compiler := querysql.NewSQLCompiler()
	frag, err := compiler.Compile(p)
	switch {
	case err == nil:
		params := frag.Params
		if params == nil {
			params = []any{}
		}
		result.Pushdown = &Plan{SQL: frag.SQL, Params: params, Exact: frag.Exact}
	case errors.Is(err, querysql.ErrNotPushable):
		formatter.VerboseLog("%v", err)
	default:
		return formatter.Fail(ExitFailure, "pushdown failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "predicate: %s\n", result.Predicate)
	b.WriteString(result.Tree)
	if !strings.HasSuffix(result.Tree, "\n") {
		b.WriteByte('\n')
	}
	if result.Pushdown == nil {
		b.WriteString("pushdown: none (full scan)")
	} else {
		check := "rechecked"
		if result.Pushdown.Exact {
			check = "exact"
		}
		fmt.Fprintf(&b, "pushdown (%s): %s\nparams: %v", check, result.Pushdown.SQL, result.Pushdown.Params)
	}
	return formatter.Success(b.String())
}
