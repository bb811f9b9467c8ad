package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/shape"
	"github.com/usestring/hyper-mcp/pkg/textquery"
)

const defaultObjectMaxBytes = 10 << 20

func newStorageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Blob storage operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file> [name]",
		Short: "Upload a file; name defaults to the file's base name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			name := filepath.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}
			var r io.Reader
			if args[0] == "-" {
				if len(args) == 1 {
					return nil, errors.New("a name is required when uploading from stdin")
				}
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return nil, err
				}
				defer f.Close()
				r = f
			}
			return c.Storage().Upload(ctx, name, r)
		}),
	}, newStorageDownloadCmd(a), newStorageQueryCmd(a), newStorageInspectCmd(a), &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Storage().Remove(ctx, args[0])
		}),
	})
	return cmd
}

func newStorageDownloadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <name>",
		Short: "Download an object to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			body, err := c.Storage().Download(cmd.Context(), args[0])
			var notOK *hyper.NotOkError
			if errors.As(err, &notOK) {
				return a.printResult(notOK.Result)
			}
			if err != nil {
				return err
			}
			defer body.Close()

			if output == "" || output == "-" {
				_, err = io.Copy(a.out, body)
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := io.Copy(f, body)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			pterm.Fprintln(a.errOut, fmt.Sprintf("Wrote %d bytes to %s", n, output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// fetchObject downloads up to maxBytes of an object for local querying. A
// not-ok download is printed and returned as *notOKError.
func (a *app) fetchObject(cmd *cobra.Command, name string, maxBytes int) (textquery.Object, error) {
	if maxBytes <= 0 {
		return textquery.Object{}, fmt.Errorf("--max-bytes must be positive, got %d", maxBytes)
	}
	c, err := a.client()
	if err != nil {
		return textquery.Object{}, err
	}
	body, err := c.Storage().Download(cmd.Context(), name)
	var notOK *hyper.NotOkError
	if errors.As(err, &notOK) {
		return textquery.Object{}, a.printResult(notOK.Result)
	}
	if err != nil {
		return textquery.Object{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, int64(maxBytes)+1))
	if err != nil {
		return textquery.Object{}, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxBytes {
		data = data[:maxBytes]
		pterm.Fprintln(a.errOut, fmt.Sprintf("Warning: %s is larger than %d bytes; only the start was read", name, maxBytes))
	}
	return textquery.Object{Name: name, ContentType: contenttype.ForName(name), Data: data}, nil
}

func newStorageQueryCmd(a *app) *cobra.Command {
	var (
		mode      string
		maxValues int
		maxBytes  int
	)
	cmd := &cobra.Command{
		Use:   "query <name> <expression>",
		Short: "Extract values from an object with css, xpath, jq, regex or form",
		Long: "Extract values from a stored object. The mode defaults from the object's format:\n" +
			"css for HTML, xpath for XML, jq for JSON, YAML and CSV, form for urlencoded data, regex otherwise.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := textquery.NewEngine(nil)
			if mode != "" {
				if err := engine.Validate(args[1], textquery.Mode(mode)); err != nil {
					return err
				}
			}
			obj, err := a.fetchObject(cmd, args[0], maxBytes)
			if err != nil {
				return err
			}
			res, err := engine.Query(obj, args[1], textquery.Mode(mode), maxValues)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "css, xpath, regex, form or jq")
	cmd.Flags().IntVar(&maxValues, "max", 100, "max values to print")
	cmd.Flags().IntVar(&maxBytes, "max-bytes", defaultObjectMaxBytes, "read at most this many bytes of the object")
	return cmd
}

func newStorageInspectCmd(a *app) *cobra.Command {
	var maxBytes int
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Outline an object's structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := a.fetchObject(cmd, args[0], maxBytes)
			if err != nil {
				return err
			}
			return a.printJSON(shape.Inspect(obj, nil))
		},
	}
	cmd.Flags().IntVar(&maxBytes, "max-bytes", defaultObjectMaxBytes, "read at most this many bytes of the object")
	return cmd
}

func newQueueCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Job queue operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enqueue <job>",
		Short: "Post a job",
		Args:  cobra.ExactArgs(1),
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			var job any
			if err := parseJSONArg(args[0], cmd.InOrStdin(), &job); err != nil {
				return nil, err
			}
			return c.Queue().Enqueue(ctx, job)
		}),
	}, &cobra.Command{
		Use:   "errors",
		Short: "List failed jobs",
		Args:  cobra.NoArgs,
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Queue().Errors(ctx)
		}),
	}, &cobra.Command{
		Use:   "queued",
		Short: "List jobs waiting to run",
		Args:  cobra.NoArgs,
		RunE: a.resultCmd(func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error) {
			return c.Queue().Queued(ctx)
		}),
	})
	return cmd
}
