package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gitlab.com/tinyland/lab/raven/pkg/hub"
	"gitlab.com/tinyland/lab/raven/pkg/store"
)

var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Publish and download themes on ThemeHub",
}

var hubCreateUserCmd = &cobra.Command{
	Use:   "create-user <name> [password]",
	Short: "Register a ThemeHub account",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		pass, err := passwordArg(args, 1, "Password: ")
		if err != nil {
			return err
		}
		pass2 := pass
		if len(args) < 2 {
			if pass2, err = readPassword("Repeat password: "); err != nil {
				return err
			}
		}
		ok, err := c.CreateUser(cmd.Context(), args[0], pass, pass2)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("passwords do not match")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Successfully created user. Sign in with `raven hub login [name] [password]`")
		return nil
	},
}

var hubLoginCmd = &cobra.Command{
	Use:   "login <name> [password]",
	Short: "Sign in to ThemeHub",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		pass, err := passwordArg(args, 1, "Password: ")
		if err != nil {
			return err
		}
		info, err := c.Login(cmd.Context(), args[0], pass)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", info.Name)
		return nil
	},
}

var hubLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored ThemeHub login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged you out")
		return nil
	},
}

var hubDeleteUserCmd = &cobra.Command{
	Use:   "delete-user [password]",
	Short: "Delete your ThemeHub account and every theme it owns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		pass, err := passwordArg(args, 0, "Password: ")
		if err != nil {
			return err
		}
		if err := c.DeleteUser(cmd.Context(), pass); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Successfully deleted user and all owned themes. Logging out")
		return nil
	},
}

var hubUploadCmd = &cobra.Command{
	Use:   "upload <theme>",
	Short: "Publish a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		created, err := c.Upload(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Published theme.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Updated published theme.")
		}
		return nil
	},
}

var downloadForce bool

var hubDownloadCmd = &cobra.Command{
	Use:   "download <theme>",
	Short: "Install a theme from ThemeHub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient(hub.WithPrompt(os.Stdin, cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		ok, err := c.Download(cmd.Context(), args[0], downloadForce)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Downloaded theme.")
		}
		return nil
	},
}

var hubUnpublishCmd = &cobra.Command{
	Use:   "unpublish <theme>",
	Short: "Remove one of your themes from ThemeHub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		return c.Unpublish(cmd.Context(), args[0])
	},
}

var hubMetaCmd = &cobra.Command{
	Use:   "meta <theme> [screen|description] [value]",
	Short: "Show or set a published theme's metadata",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		switch len(args) {
		case 1:
			meta, err := c.Metadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "screen: %s\ndescription: %s\n", meta.Screen, meta.Description)
			return nil
		case 3:
			return c.PublishMetadata(cmd.Context(), args[0], args[1], args[2])
		default:
			return fmt.Errorf("meta needs both a type and a value to publish")
		}
	},
}

var hubExportCmd = &cobra.Command{
	Use:   "export <theme> [file]",
	Short: "Write a theme to a tar archive",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		dst := args[0] + ".tar"
		if len(args) == 2 {
			dst = args[1]
		}
		tmp, err := c.Export(args[0])
		if err != nil {
			return err
		}
		defer os.Remove(tmp)
		if err := store.CopyFile(tmp, dst); err != nil {
			return err
		}
		abs, _ := filepath.Abs(dst)
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], abs)
		return nil
	},
}

var hubImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Install a theme from a tar archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := hubClient()
		if err != nil {
			return err
		}
		name, err := c.Import(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", name)
		return nil
	},
}

func init() {
	hubDownloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "Install reported themes without asking and skip the install warning")

	hubCmd.AddCommand(hubCreateUserCmd, hubLoginCmd, hubLogoutCmd, hubDeleteUserCmd,
		hubUploadCmd, hubDownloadCmd, hubUnpublishCmd, hubMetaCmd, hubExportCmd, hubImportCmd)
	rootCmd.AddCommand(hubCmd)
}

func hubClient(opts ...hub.Option) (*hub.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c := newHubClient(cfg)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// passwordArg returns args[i] if present, otherwise asks for it.
func passwordArg(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return readPassword(prompt)
}

// readPassword reads a password without echo when stdin is a terminal and
// a plain line otherwise.
func readPassword(prompt string) (string, error) {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(fd))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
