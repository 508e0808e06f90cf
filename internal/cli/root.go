package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"davcompat/internal/app"
	"davcompat/internal/config"
	"davcompat/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// serviceFactory builds the service once flags are parsed. Tests swap it
// to inject a keyring.
type serviceFactory func(cmd *cobra.Command, opts *rootOptions) (*app.Service, error)

func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultService)
}

func newRootCommand(build serviceFactory) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "davcompat",
		Short:        "Read and write the WebDAV sync password across host controller versions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml (default: $DAVCOMPAT_HOME/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warning, error")

	root.AddCommand(newInspectCommand(build, opts))
	root.AddCommand(newStatusCommand(build, opts))
	root.AddCommand(newPasswordCommand(build, opts))
	return root
}

func defaultService(cmd *cobra.Command, opts *rootOptions) (*app.Service, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, app.WrapExit(app.ExitUserError, err)
	}
	level := zeroDefault(opts.logLevel, cfg.LogLevel)
	logger, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return nil, app.WrapExit(app.ExitUserError, err)
	}
	return app.NewService(cfg, app.WithLogger(logger)), nil
}

func newInspectCommand(build serviceFactory, opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show which controller shape the host hands out and how each operation is routed",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := build(cmd, opts)
			if err != nil {
				return err
			}
			result, err := svc.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "store: %s\n", result.Store)
			fmt.Fprintf(out, "addon_instance: %s\n", result.AddonInstance)
			fmt.Fprintf(out, "controller: %s\n", result.Handle)
			fmt.Fprintf(out, "get_path: %s\n", result.GetPath)
			fmt.Fprintf(out, "set_path: %s\n", result.SetPath)
			fmt.Fprintf(out, "prefs_file: %s\n", result.Paths.PrefsPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newStatusCommand(build serviceFactory, opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show controller shape, registered addons, and the last password change",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := build(cmd, opts)
			if err != nil {
				return err
			}
			result, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "store: %s\n", result.Store)
			fmt.Fprintf(out, "controller: %s (get=%s, set=%s)\n", result.Handle, result.GetPath, result.SetPath)
			fmt.Fprintf(out, "addons: %s\n", zeroDefault(strings.Join(result.Addons, ","), "-"))
			fmt.Fprintf(out, "password_set: %v\n", result.HasPassword)
			fmt.Fprintf(out, "last_set: %s\n", zeroDefault(result.LastSetAt, "-"))
			if result.LastSetAt != "" {
				fmt.Fprintf(out, "last_set_via: %s/%s\n", result.LastSetStore, result.LastSetPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newPasswordCommand(build serviceFactory, opts *rootOptions) *cobra.Command {
	password := &cobra.Command{
		Use:   "password",
		Short: "Get or set the WebDAV password",
	}
	password.AddCommand(newPasswordGetCommand(build, opts))
	password.AddCommand(newPasswordSetCommand(build, opts))
	return password
}

func newPasswordGetCommand(build serviceFactory, opts *rootOptions) *cobra.Command {
	var reveal bool
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the WebDAV password (redacted unless --reveal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := build(cmd, opts)
			if err != nil {
				return err
			}
			result, err := svc.GetPassword(cmd.Context(), reveal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, result)
			}
			fmt.Fprintln(out, result.Password)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password in clear text")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newPasswordSetCommand(build serviceFactory, opts *rootOptions) *cobra.Command {
	var fromStdin bool
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "set [password]",
		Short: "Replace the WebDAV password",
		Long:  "Replace the WebDAV password. The password is taken from the argument, from stdin with --stdin, or from an interactive prompt.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, args, fromStdin)
			if err != nil {
				return app.WrapExit(app.ExitUserError, err)
			}
			svc, err := build(cmd, opts)
			if err != nil {
				return err
			}
			result, err := svc.SetPassword(cmd.Context(), secret)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "password updated (store=%s, path=%s)\n", result.Store, result.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the password from the first line of stdin")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func readSecret(cmd *cobra.Command, args []string, fromStdin bool) (string, error) {
	switch {
	case len(args) == 1 && fromStdin:
		return "", fmt.Errorf("pass the password as an argument or with --stdin, not both")
	case len(args) == 1:
		return args[0], nil
	case fromStdin:
		return readFirstLine(cmd.InOrStdin())
	default:
		return promptSecret(cmd.InOrStdin(), cmd.OutOrStdout())
	}
}

func readFirstLine(in io.Reader) (string, error) {
	bytes, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(bytes), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func printJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func zeroDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
