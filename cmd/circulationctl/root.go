package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"library-circulation/pkg/client"
)

const defaultServer = "http://localhost:8080"

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	out         io.Writer
	server      string
	sessionPath string
	jsonOut     bool
	now         func() time.Time
	opts        []client.Option

	api *client.Client
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out, now: time.Now}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "circulationctl",
		Short:         "Borrow, return and settle fines against a circulation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.connect(cmd.Flags().Changed("server"))
		},
	}
	server := os.Getenv("CIRCULATION_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&c.server, "server", server, "API base URL (env CIRCULATION_SERVER)")
	root.PersistentFlags().StringVar(&c.sessionPath, "session", defaultSessionPath(), "session file (env CIRCULATION_SESSION)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print responses as JSON")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.usersCmd(),
		c.booksCmd(),
		c.borrowCmd(),
		c.loansCmd(),
		c.finesCmd(),
	)
	return root
}

// connect resumes the saved session. An expired session is discarded; a
// session saved against another server is used unless --server overrides
// it.
func (c *cli) connect(serverFlagSet bool) error {
	s, err := loadSession(c.sessionPath)
	if err != nil {
		return err
	}
	if s != nil && !s.Valid(c.now()) {
		if err := removeSession(c.sessionPath); err != nil {
			return err
		}
		s = nil
	}
	base := c.server
	opts := append([]client.Option{}, c.opts...)
	if s != nil {
		if !serverFlagSet && s.BaseURL != "" {
			base = s.BaseURL
		}
		opts = append(opts, client.WithSession(s))
	}
	c.api = client.New(base, opts...)
	return nil
}

func (c *cli) requireSession() error {
	if c.api.Session() == nil {
		return fmt.Errorf("%w; run circulationctl login first", client.ErrNoSession)
	}
	return nil
}

// authed wraps a RunE so it fails early without a session.
func (c *cli) authed(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}
