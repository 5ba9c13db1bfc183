package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/litedocs/internal/config"
	"github.com/roach88/litedocs/internal/extjson"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Style  string
	Indent bool
}

// FmtResult is the JSON payload of the fmt command.
type FmtResult struct {
	Text string `json:"text"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reformat an extended-JSON document",
		Long: `Parse a document and render it again.

Reads the file argument, or stdin when it is omitted or "-". Marker objects
such as {"$oid": "..."} are recognized, so the output always uses the
notation selected by --style.

Examples:
  litedocs fmt doc.json
  echo '{"_id": {"$oid": "c969ce7c86ebf1670512579b"}}' | litedocs fmt
  litedocs fmt --style json --indent=false doc.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runFmt(opts, cmd, path)
		},
	}

	cmd.Flags().StringVar(&opts.Style, "style", "", "output style (friendly|json); defaults to the config")
	cmd.Flags().BoolVar(&opts.Indent, "indent", true, "indent nested documents and arrays")

	return cmd
}

func runFmt(opts *FmtOptions, cmd *cobra.Command, path string) error {
	formatter := opts.formatter(cmd)

	out := opts.Config.Output
	if opts.Style != "" {
		out.Style = opts.Style
	}
	if cmd.Flags().Changed("indent") {
		out.Indent = opts.Indent
	}
	if out.Style != config.StyleFriendly && out.Style != config.StyleJSON {
		return NewExitError(ExitCommandError, "invalid --style "+out.Style+": must be friendly or json")
	}
	format := config.Config{Output: out}.Format()

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read input", err)
	}

	doc, err := extjson.ParseDocument(text)
	if err != nil {
		return formatter.Fail(ExitFailure, "invalid document", err)
	}
	rendered := extjson.RenderDocument(doc, format)

	if formatter.Format == "json" {
		return formatter.Success(FmtResult{Text: rendered})
	}
	return formatter.Success(strings.TrimSuffix(rendered, "\n"))
}
