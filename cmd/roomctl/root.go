package main

import (
	"fmt"
	"io"
	"os"

	"roombook/pkg/client"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

const (
	envServer = "ROOMBOOK_URL"
	envToken  = "ROOMBOOK_TOKEN"

	defaultServer = "http://localhost:8080"
)

type options struct {
	server string
	token  string
}

func (o *options) httpClient() (*client.HttpClient, error) {
	if o.token == "" {
		return nil, fmt.Errorf("no token: pass --token or set %s", envToken)
	}
	return client.NewHttpClient(o.server).WithToken(o.token), nil
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "Book meeting rooms from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr(envServer, defaultServer), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(envToken), "bearer token")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRoomsCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newBookingsCmd(opts))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "roomctl %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func apiError(resp *client.Response) error {
	return fmt.Errorf("request failed (%d): %s", resp.StatusCode, client.GetErrorMessage(resp))
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
