package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/litedocs/internal/explorer"
	"github.com/roach88/litedocs/internal/extjson"
	"github.com/roach88/litedocs/internal/value"
)

// DocumentResult is the JSON payload of the document commands.
type DocumentResult struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Inserted   *bool           `json:"inserted,omitempty"`
	Deleted    *bool           `json:"deleted,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one document by _id",
		Long: `Print the document whose _id equals the given value.

The id is written as an extended-JSON value, so strings need quotes.

Examples:
  litedocs get people 5
  litedocs get people '"ada"'
  litedocs get people 'ObjectId("c969ce7c86ebf1670512579b")'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd, args[0], args[1])
		},
	}
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <collection> [file]",
		Short: "Insert a new document",
		Long: `Insert the document read from file, or from stdin when it is omitted.

A document without an _id is given a new ObjectId. Inserting an _id that is
already stored fails; use save to replace a document.

Examples:
  litedocs insert people ada.json
  echo '{"name": "Ada"}' | litedocs insert people`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, cmd, args, false)
		},
	}
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <collection> [file]",
		Short: "Insert or replace a document by _id",
		Long: `Store the document read from file, or from stdin when it is omitted,
replacing any document with the same _id.

Examples:
  litedocs save people ada.json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, cmd, args, true)
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete one document by _id",
		Long: `Delete the document whose _id equals the given extended-JSON value.

Examples:
  litedocs delete people 5`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runGet(opts *RootOptions, cmd *cobra.Command, collection, idText string) error {
	formatter := opts.formatter(cmd)

	id, err := extjson.ParseValue(idText)
	if err != nil {
		return formatter.Fail(ExitFailure, "invalid id", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	doc, err := st.Collection(collection).Get(commandContext(cmd), id)
	if err != nil {
		return formatter.Fail(ExitFailure, "get failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(DocumentResult{
			Collection: collection,
			ID:         extjson.Render(id, extjson.Friendly),
			Document:   json.RawMessage(extjson.RenderDocument(doc, extjson.JSONCompatible)),
		})
	}
	return formatter.Success(strings.TrimSuffix(extjson.RenderDocument(doc, opts.Config.Format()), "\n"))
}

func runEdit(opts *RootOptions, cmd *cobra.Command, args []string, upsert bool) error {
	formatter := opts.formatter(cmd)
	collection := args[0]
	path := ""
	if len(args) == 2 {
		path = args[1]
	}

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read input", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	session := explorer.NewSession(explorer.StoreDatabase(st), explorer.WithLogger(opts.Logger))
	ctx := commandContext(cmd)

	if !upsert {
		id, err := session.AddDocument(ctx, collection, text)
		if err != nil {
			return formatter.Fail(ExitFailure, "insert failed", err)
		}
		rendered := extjson.Render(id, extjson.Friendly)
		if formatter.Format == "json" {
			inserted := true
			return formatter.Success(DocumentResult{Collection: collection, ID: rendered, Inserted: &inserted})
		}
		return formatter.Success(fmt.Sprintf("inserted %s into %s", rendered, collection))
	}

	// The id is read back from the text so it can be reported.
	doc, err := extjson.ParseDocument(text)
	if err != nil {
		return formatter.Fail(ExitFailure, "save failed", err)
	}
	inserted, err := session.SaveDocument(ctx, collection, text)
	if err != nil {
		return formatter.Fail(ExitFailure, "save failed", err)
	}
	id, ok := doc.Get("_id")
	if !ok {
		id = value.Null{}
	}
	rendered := extjson.Render(id, extjson.Friendly)
	if !ok {
		rendered = "new document"
	}

	if formatter.Format == "json" {
		return formatter.Success(DocumentResult{Collection: collection, ID: rendered, Inserted: &inserted})
	}
	verb := "replaced"
	if inserted {
		verb = "inserted"
	}
	return formatter.Success(fmt.Sprintf("%s %s in %s", verb, rendered, collection))
}

func runDelete(opts *RootOptions, cmd *cobra.Command, collection, idText string) error {
	formatter := opts.formatter(cmd)

	id, err := extjson.ParseValue(idText)
	if err != nil {
		return formatter.Fail(ExitFailure, "invalid id", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	session := explorer.NewSession(explorer.StoreDatabase(st), explorer.WithLogger(opts.Logger))
	deleted, err := session.RemoveDocument(commandContext(cmd), collection, value.NewDocument(value.F("_id", id)))
	if err != nil {
		return formatter.Fail(ExitFailure, "delete failed", err)
	}

	rendered := extjson.Render(id, extjson.Friendly)
	if formatter.Format == "json" {
		return formatter.Success(DocumentResult{Collection: collection, ID: rendered, Deleted: &deleted})
	}
	if !deleted {
		return formatter.Success(fmt.Sprintf("no document %s in %s", rendered, collection))
	}
	return formatter.Success(fmt.Sprintf("deleted %s from %s", rendered, collection))
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
