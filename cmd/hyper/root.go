package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/usestring/hyper-mcp/internal/logging"
	"github.com/usestring/hyper-mcp/internal/profile"
	"github.com/usestring/hyper-mcp/pkg/hyper"
)

// app holds the state shared by all commands.
type app struct {
	out    io.Writer
	errOut io.Writer

	profileName string
	domain      string
	idField     string
	timeout     time.Duration
	verbose     bool

	// openStore is replaced in tests to avoid the OS keyring.
	openStore func() (*profile.Store, error)
}

func newApp(out, errOut io.Writer) *app {
	a := &app{out: out, errOut: errOut}
	a.openStore = a.defaultStore
	return a
}

func (a *app) defaultStore() (*profile.Store, error) {
	dir, err := profile.DefaultDir()
	if err != nil {
		return nil, err
	}
	secrets, err := profile.OpenSecrets(dir)
	if err != nil {
		// Profiles without credentials still work.
		fmt.Fprintln(a.errOut, "warning: secure storage unavailable:", err)
		secrets = nil
	}
	return profile.NewStore(filepath.Join(dir, "profiles.yaml"), secrets), nil
}

// client resolves the active connection and builds a hyper client. Flags
// override the profile's domain and id field.
func (a *app) client() (*hyper.Client, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	r, err := store.Resolve(a.profileName)
	if err != nil {
		return nil, err
	}

	domain, idField := r.Domain, r.IDField
	if a.domain != "" {
		domain = a.domain
	}
	if a.idField != "" {
		idField = a.idField
	}

	opts := []hyper.Option{
		hyper.WithHTTPClient(&http.Client{Timeout: a.timeout}),
		hyper.WithUserAgent("hyper-cli/" + version),
	}
	if domain != "" {
		opts = append(opts, hyper.WithDomain(domain))
	}
	if idField != "" {
		opts = append(opts, hyper.WithIDField(idField))
	}
	return hyper.New(r.Connection, opts...)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hyper",
		Short:         "Command line client for the hyper services",
		Long:          `hyper talks to a hyper instance: documents, cache, search, storage and queue. The connection comes from HYPER, --profile, or the current profile saved by "hyper connect".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			_, err := logging.Setup(logging.Config{Level: level, Stderr: a.errOut})
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.profileName, "profile", "p", "", "profile to use instead of the current one")
	flags.StringVar(&a.domain, "domain", "", "data domain (default from the profile, else \"default\")")
	flags.StringVar(&a.idField, "id-field", "", "document id field (default from the profile, else \"id\")")
	flags.DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log each request to stderr")

	root.AddCommand(
		newConnectCmd(a),
		newProfilesCmd(a),
		newInfoCmd(a),
		newDataCmd(a),
		newCacheCmd(a),
		newSearchCmd(a),
		newStorageCmd(a),
		newQueueCmd(a),
	)
	return root
}

// resultCmd wraps a façade call: it builds the client, runs fn and prints
// the result.
func (a *app) resultCmd(fn func(ctx context.Context, c *hyper.Client, cmd *cobra.Command, args []string) (hyper.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := a.client()
		if err != nil {
			return err
		}
		res, err := fn(cmd.Context(), c, cmd, args)
		if err != nil {
			return err
		}
		return a.printResult(res)
	}
}
