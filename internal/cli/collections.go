package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/litedocs/internal/explorer"
	"github.com/roach88/litedocs/internal/query"
)

// CollectionInfo describes one collection in list output.
type CollectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CollectionResult is the JSON payload of the mutating collections
// subcommands.
type CollectionResult struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	From   string `json:"from,omitempty"`
}

// NewCollectionsCommand creates the collections command and its
// subcommands.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List and manage collections",
		Long: `List, create, rename and drop collections.

Collection names are compared after Unicode normalization, so "café" typed
with a combining accent names the same collection as the precomposed form.
Names may not be empty or start with "$".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsList(rootOpts, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List collections with their document counts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "add <name>",
		Short:         "Create an empty collection",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsChange(rootOpts, cmd, "add", "", args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "rename <old> <new>",
		Short:         "Rename a collection",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsChange(rootOpts, cmd, "rename", args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "drop <name>",
		Short:         "Drop a collection and all of its documents",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionsChange(rootOpts, cmd, "drop", "", args[0])
		},
	})

	return cmd
}

func runCollectionsList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	names, err := st.CollectionNames(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, "list collections failed", err)
	}

	infos := make([]CollectionInfo, 0, len(names))
	for _, name := range names {
		n, err := st.Collection(name).Count(ctx, query.All{})
		if err != nil {
			return formatter.Fail(ExitFailure, "count "+name+" failed", err)
		}
		infos = append(infos, CollectionInfo{Name: name, Count: n})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		return formatter.Success("no collections")
	}
	var b strings.Builder
	for i, info := range infos {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%d", info.Name, info.Count)
	}
	return formatter.Success(b.String())
}

func runCollectionsChange(opts *RootOptions, cmd *cobra.Command, action, from, name string) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	session := explorer.NewSession(explorer.StoreDatabase(st), explorer.WithLogger(opts.Logger))
	ctx := commandContext(cmd)

	var message string
	switch action {
	case "add":
		err = session.AddCollection(ctx, name)
		message = "created " + name
	case "rename":
		err = session.RenameCollection(ctx, from, name)
		message = "renamed " + from + " to " + name
	case "drop":
		err = session.DropCollection(ctx, name)
		message = "dropped " + name
	}
	if err != nil {
		return formatter.Fail(ExitFailure, action+" collection failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(CollectionResult{Action: action, Name: name, From: from})
	}
	return formatter.Success(message)
}
