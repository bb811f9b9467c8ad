package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

func newDataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Document store operations",
		Long:  `Document arguments are JSON literals, "-" for stdin, or "@file".`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a document",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Data().Get(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "add <doc>",
		Short: "Store a new document",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var doc map[string]any
			if err := parseJSONArg(args[0], cmd.InOrStdin(), &doc); err != nil {
				return nil, err
			}
			return c.Data().Add(ctx, doc)
		}),
	}, &cobra.Command{
		Use:   "update <id> <doc>",
		Short: "Replace a document",
		Args:  cobra.ExactArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var doc map[string]any
			if err := parseJSONArg(args[1], cmd.InOrStdin(), &doc); err != nil {
				return nil, err
			}
			return c.Data().Update(ctx, args[0], doc)
		}),
	}, &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Data().Remove(ctx, args[0])
		}),
	}, &cobra.Command{
		Use:   "index <name> <field>...",
		Short: "Create an index over fields",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Data().Index(ctx, args[0], args[1:])
		}),
	}, &cobra.Command{
		Use:   "bulk <docs>",
		Short: "Write an array of documents",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var docs []hyper.Doc
			if err := parseJSONArg(args[0], cmd.InOrStdin(), &docs); err != nil {
				return nil, err
			}
			return c.Data().Bulk(ctx, docs)
		}),
	},
		newDataListCmd(a),
		newDataQueryCmd(a),
	)
	return cmd
}

func newDataListCmd(a *app) *cobra.Command {
	var opts hyper.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents by id range or keys",
		Args:  cobra.NoArgs,
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Data().List(ctx, opts)
		}),
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max documents")
	cmd.Flags().StringVar(&opts.StartKey, "start", "", "first id (inclusive)")
	cmd.Flags().StringVar(&opts.EndKey, "end", "", "last id (inclusive)")
	cmd.Flags().StringSliceVar(&opts.Keys, "keys", nil, "fetch exactly these ids")
	cmd.Flags().BoolVar(&opts.Descending, "descending", false, "reverse id order")
	return cmd
}

func newDataQueryCmd(a *app) *cobra.Command {
	var (
		opts  hyper.QueryOptions
		sorts []string
	)
	cmd := &cobra.Command{
		Use:   "query <selector>",
		Short: "Find documents matching a selector",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var selector map[string]any
			if err := parseJSONArg(args[0], cmd.InOrStdin(), &selector); err != nil {
				return nil, err
			}
			sort, err := parseSort(sorts)
			if err != nil {
				return nil, err
			}
			opts.Sort = sort
			return c.Data().Query(ctx, selector, opts)
		}),
	}
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "fields to return")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "sort by field[:asc|desc], repeatable")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max documents")
	cmd.Flags().StringVar(&opts.UseIndex, "use-index", "", "index to use")
	return cmd
}
