package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

func newCacheCmd(a *app) *cobra.Command {
	var ttl string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Key-value cache operations",
		Long:  `Value arguments are JSON literals, "-" for stdin, or "@file".`,
	}
	cmd.PersistentFlags().StringVar(&ttl, "ttl", "", "time to live for add and set, e.g. 5m")

	value := func(cmd *cobra.Command, arg string) (any, error) {
		var v any
		err := parseJSONArg(arg, cmd.InOrStdin(), &v)
		return v, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Read a value",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Cache().Get(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "add <key> <value>",
		Short: "Create a value; fails when the key exists",
		Args:  cobra.ExactArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			v, err := value(cmd, args[1])
			if err != nil {
				return nil, err
			}
			return c.Cache().Add(ctx, args[0], v, ttl)
		}),
	}, &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or replace a value",
		Args:  cobra.ExactArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			v, err := value(cmd, args[1])
			if err != nil {
				return nil, err
			}
			return c.Cache().Set(ctx, args[0], v, ttl)
		}),
	}, &cobra.Command{
		Use:   "remove <key>",
		Short: "Delete a value",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Cache().Remove(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "query [pattern]",
		Short: "List entries whose keys match a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			return c.Cache().Query(ctx, pattern)
		}),
	})
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Full-text search operations",
		Long:  `Document arguments are JSON literals, "-" for stdin, or "@file".`,
	}

	doc := func(cmd *cobra.Command, arg string) (map[string]any, error) {
		var v map[string]any
		err := parseJSONArg(arg, cmd.InOrStdin(), &v)
		return v, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <key> <doc>",
		Short: "Index a document",
		Args:  cobra.ExactArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			v, err := doc(cmd, args[1])
			if err != nil {
				return nil, err
			}
			return c.Search().Add(ctx, args[0], v)
		}),
	}, &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch an indexed document",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Search().Get(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "update <key> <doc>",
		Short: "Replace an indexed document",
		Args:  cobra.ExactArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			v, err := doc(cmd, args[1])
			if err != nil {
				return nil, err
			}
			return c.Search().Update(ctx, args[0], v)
		}),
	}, &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a document from the index",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Search().Remove(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "load <docs>",
		Short: "Index an array of documents",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var docs []hyper.Doc
			if err := parseJSONArg(args[0], cmd.InOrStdin(), &docs); err != nil {
				return nil, err
			}
			return c.Search().Load(ctx, docs)
		}),
	}, newSearchQueryCmd(a))
	return cmd
}

func newSearchQueryCmd(a *app) *cobra.Command {
	var (
		fields []string
		filter string
	)
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a full-text query",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			opts := hyper.SearchOptions{Fields: fields}
			if filter != "" {
				if err := parseJSONArg(filter, cmd.InOrStdin(), &opts.Filter); err != nil {
					return nil, err
				}
			}
			return c.Search().Query(ctx, args[0], opts)
		}),
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to search")
	cmd.Flags().StringVar(&filter, "filter", "", "exact-match filter as JSON")
	return cmd
}
