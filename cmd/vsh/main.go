package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"vsh/internal/app"
	"vsh/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, or falls back to the built-in config
// when there is none.
func loadConfig() (*config.Config, *app.Defaults, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	if _, err := os.Stat(defaults.ConfigPath); errors.Is(err, os.ErrNotExist) {
		return config.Builtin(uuid.New().String(), defaults.BaseDir), defaults, nil
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates a VshApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "shell", "export").
func newApp(cmd *cobra.Command, operation string, args []string) (*app.VshApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewVshApp(cmd.Context(), cfg, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var stdin = bufio.NewReader(os.Stdin)

// readPassphrase prompts on stderr and reads a passphrase without echo when
// stdin is a terminal, or one line from stdin otherwise.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "vsh",
	Short: "Virtual file system shell",
	Long: `vsh is an interactive shell over an in-memory file system.

Without a subcommand it starts the shell, prompting when stdin is a terminal.
Sessions can be saved with saveJShell and resumed with loadJShell.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "shell", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		return a.RunShell(cmd.Context(), os.Stdin, os.Stdout, os.Stderr, interactive)
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run SCRIPT",
	Short: "Run shell commands from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()

		a, err := newApp(cmd, "run", args)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.RunShell(cmd.Context(), f, os.Stdout, os.Stderr, false)
	},
}

// exec command
var execCmd = &cobra.Command{
	Use:   "exec -- LINE...",
	Short: "Execute shell lines, stopping at the first failure",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "exec", args)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Exec(cmd.Context(), args, os.Stdout, os.Stderr)
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		sessionID := uuid.New().String()
		cfg := config.NewConfig(sessionID, defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Session ID: %s\n", sessionID)
		fmt.Printf("Base Dir:   %s\n", defaults.BaseDir)
		fmt.Println("Run 'vsh keys init' before exporting snapshots.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(defaults.ConfigPath); err != nil {
			fmt.Print("No configuration file; using built-in defaults.\n\n")
		} else {
			fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		}
		fmt.Printf("Session ID: %s\n", cfg.SessionID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s (%s)\n", cfg.LogDir, cfg.LogLevel)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Separator:  %s\n", cfg.Shell.Separator)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the export key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "keys-init", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.KeysConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("creating keys: %w", err)
		}
		fmt.Println("Encryption keys created.")
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage saved sessions",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "snapshot-list", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.ListSnapshots()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots saved.")
			return nil
		}
		for _, s := range infos {
			fmt.Printf("%-20s  %s  %5d node(s)  %s\n",
				s.Name,
				s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				s.NodeCount,
				s.ID,
			)
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "snapshot-show", args)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.ShowSnapshot(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name:        %s\n", s.Name)
		fmt.Printf("ID:          %s\n", s.ID)
		fmt.Printf("Created:     %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Working dir: %s\n", s.WorkingDir)
		fmt.Printf("Nodes:       %d\n", len(s.Nodes))
		fmt.Printf("History:     %d line(s)\n", len(s.History))
		for _, p := range s.DirStack {
			fmt.Printf("Stack:       %s\n", p)
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "snapshot-delete", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Encrypt a saved session into the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "snapshot-export", args)
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := a.ExportSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported %s to %s\n", args[0], key)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import NAME",
	Short: "Decrypt a session from the vault and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "snapshot-import", args)
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		s, err := a.ImportSnapshot(args[0], passphrase)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("Imported %s (%d node(s))\n", s.Name, len(s.Nodes))
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)

	// root commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(snapshotCmd)
}
