// Package main is cardadmin, a command-line client for the administrator
// API of the card server: login, the field catalog, templates and the email
// relay check.
package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/bizcard/internal/client/admin"
	"github.com/atinyakov/bizcard/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// app holds the state shared by all subcommands.
type app struct {
	server      string
	sessionPath string
	timeout     time.Duration
	in          *admin.Input
}

func main() {
	a := &app{in: admin.NewInput(os.Stdin)}
	if err := newRootCmd(a).Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flag defaults come from a so that the
// shell keeps the values given on the command line.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cardadmin",
		Short:         "Manage fields and templates of a card server",
		Version:       fmt.Sprintf("%s (built %s)", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.server, "server", "s",
		cmp.Or(a.server, os.Getenv("CARDADMIN_SERVER"), "http://localhost:8080"), "card server base URL")
	flags.StringVar(&a.sessionPath, "session-file",
		cmp.Or(a.sessionPath, admin.DefaultSessionPath()), "where the admin token is kept")
	flags.DurationVar(&a.timeout, "timeout", cmp.Or(a.timeout, 30*time.Second), "HTTP request timeout")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newFieldsCmd(a),
		newTemplatesCmd(a),
		newTestEmailCmd(a),
		newShellCmd(a),
	)
	return root
}

func (a *app) sessionFile() admin.SessionFile {
	return admin.SessionFile{Path: a.sessionPath}
}

// client returns an API client. With authenticated set it fails unless a
// usable session for the selected server is stored.
func (a *app) client(authenticated bool) (*admin.Client, error) {
	c := admin.NewClient(a.server, "", a.timeout)
	if !authenticated {
		return c, nil
	}

	s, err := a.sessionFile().Load()
	if err != nil {
		return nil, err
	}
	if !s.Usable(c.BaseURL, time.Now()) {
		return nil, fmt.Errorf("not logged in to %s; run cardadmin login", c.BaseURL)
	}
	c.Token = s.Token
	return c, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				password string
				err      error
			)
			if fromStdin {
				password, err = a.in.ReadLine()
			} else {
				password, err = a.in.PromptPassword(cmd.ErrOrStderr())
			}
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			c, _ := a.client(false)
			s, err := c.Login(cmd.Context(), password)
			if err != nil {
				return err
			}
			if err := a.sessionFile().Save(s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s, token expires %s\n", s.Server, humanize.Time(s.ExpiresAt))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client(true)
			if err == nil {
				err = c.Logout(cmd.Context())
				var apiErr *admin.APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
					err = nil
				}
				if err != nil {
					return err
				}
			}
			if err := a.sessionFile().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newFieldsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Show the field catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := a.client(false)
			fields, err := c.Fields(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), fields)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tTYPE\tREQUIRED")
			for _, f := range fields {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", f.Key, f.Label, f.Type, f.Required)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "set <file.json>",
		Short: "Replace the field catalog with the array in a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var fields []models.FieldDefinition
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("%s: expected a JSON array of fields: %w", args[0], err)
			}

			c, err := a.client(true)
			if err != nil {
				return err
			}
			if err := c.ReplaceFields(cmd.Context(), fields); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Field catalog replaced (%d fields)\n", len(fields))
			return nil
		},
	})
	return cmd
}

func newTemplatesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List card templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _ := a.client(false)
			templates, err := c.Templates(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), templates)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tFIELDS\tBACKGROUND")
			for _, t := range templates {
				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n",
					t.ID, t.Name, t.Size.W, t.Size.H, strings.Join(t.EnabledFields, ","), cmp.Or(t.BackgroundURL, "-"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print templates as JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a template",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client(true)
				if err != nil {
					return err
				}
				tpl, err := c.CreateTemplate(cmd.Context(), strings.Join(args, ""))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", tpl.ID, tpl.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "patch <id> <file.json>",
			Short: "Apply a partial template from a JSON file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := os.ReadFile(args[1])
				if err != nil {
					return err
				}
				if !json.Valid(raw) {
					return fmt.Errorf("%s: not valid JSON", args[1])
				}

				c, err := a.client(true)
				if err != nil {
					return err
				}
				if err := c.PatchTemplate(cmd.Context(), args[0], raw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "background <id> <image>",
			Short: "Upload a PNG or JPEG background for a template",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				dataURL, err := admin.ImageDataURL(args[1])
				if err != nil {
					return err
				}

				c, err := a.client(true)
				if err != nil {
					return err
				}
				url, err := c.UploadBackground(cmd.Context(), args[0], dataURL)
				if err != nil {
					return err
				}
				info, _ := os.Stat(args[1])
				size := "?"
				if info != nil {
					size = humanize.Bytes(uint64(info.Size()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %s\n", args[1], size, url)
				return nil
			},
		},
	)
	return cmd
}

func newTestEmailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "Ask the server to send a test email to the administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}
			data, err := c.TestEmail(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test email sent")
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

// newShellCmd runs an interactive loop that executes cardadmin commands.
func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return repl(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// repl reads commands from a.in until exit or end of input. Flags given on a
// line apply to that line only; every line starts from the settings the
// shell was started with.
func repl(ctx context.Context, a *app, out, errOut io.Writer) error {
	prompt := color.New(color.FgCyan).Sprint("cardadmin> ")
	failed := color.New(color.FgRed)
	base := *a

	for {
		fmt.Fprint(out, prompt)
		line, err := a.in.ReadLine()
		if err != nil {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye")
			return nil
		case "shell":
			fmt.Fprintln(out, "Already in the shell")
			continue
		}

		cur := base
		root := newRootCmd(&cur)
		root.SetArgs(args)
		root.SetOut(out)
		root.SetErr(errOut)
		if err := root.ExecuteContext(ctx); err != nil {
			failed.Fprintln(errOut, "error:", err)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
