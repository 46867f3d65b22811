package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
)

// flags are the root flags; they apply to every subcommand and win over the
// config file and environment.
type flags struct {
	configPath string
	storage    string
	path       string
	theme      string
	group      bool
	verbose    bool
}

// Run executes the CLI with args (without the program name) and returns an
// exit code (0 ok, 1 error, 2 usage).
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err != nil && err.Error() != "" {
		ui.Fail(stderr, err.Error())
		var e *exitErr
		if errors.As(err, &e) && e.hint != "" {
			ui.Hint(stderr, e.hint)
		}
	}
	return exitCode(err)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a tiny CLI",
		Long:          "A todo list kept in a durable key-value store (SQLite by default).",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return &exitErr{code: exitUsage}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.DefaultFile, "config file")
	pf.StringVar(&f.storage, "storage", "", "storage backend: memory, file, sqlite, mysql")
	pf.StringVar(&f.path, "path", "", "data file for the file and sqlite backends")
	pf.StringVar(&f.theme, "theme", "", "output theme: classic, neon, mono")
	pf.BoolVar(&f.group, "group", false, "group output by pending/done")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	run := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, f, stdout, stderr)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.open(); err != nil {
				return err
			}
			return fn(cmd, a, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:     "add <title...>",
			Short:   "Add a new item (title can be multiple words)",
			Example: `  todo add "Buy milk"`,
			Args:    minArgs(1, "add <title...>"),
			RunE:    run(doAdd),
		},
		&cobra.Command{
			Use:     "ls",
			Short:   "List items",
			Example: "  todo ls\n  todo --group ls",
			Args:    exactArgs(0, "ls"),
			RunE:    run(doList),
		},
		&cobra.Command{
			Use:     "edit <id> <title...>",
			Short:   "Change the title of an item",
			Example: `  todo edit 2 "Buy oat milk"`,
			Args:    minArgs(2, "edit <id> <title...>"),
			RunE:    run(doEdit),
		},
		&cobra.Command{
			Use:     "done <id>",
			Short:   "Toggle done for an item",
			Example: "  todo done 2\n  todo done 3f2a",
			Args:    exactArgs(1, "done <id>"),
			RunE:    run(doToggle),
		},
		&cobra.Command{
			Use:     "rm <id>",
			Short:   "Remove an item",
			Example: "  todo rm 3",
			Args:    exactArgs(1, "rm <id>"),
			RunE:    run(doRemove),
		},
		newInitCommand(f, stdout, stderr),
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every done item",
			Args:  exactArgs(0, "clear"),
			RunE:  run(doClear),
		},
	)
	return root
}

func newApp(cmd *cobra.Command, f *flags, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.storage != "" {
		cfg.Storage.Backend = f.storage
	}
	if f.path != "" {
		cfg.Storage.Path = f.path
	}
	if f.theme != "" {
		cfg.UI.Theme = f.theme
	}
	if cmd.Flags().Changed("group") {
		cfg.UI.Group = f.group
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	return &app{cfg: cfg, out: stdout, err: stderr}, nil
}

// newInitCommand writes the effective settings (defaults, environment and
// flags) to the config file.
func newInitCommand(f *flags, stdout, stderr io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Write a config file with the current settings",
		Example: "  todo --storage file init\n  todo init --force",
		Args:    exactArgs(0, "init"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, f, stdout, stderr)
			if err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return usageErrorf("config: %v", err)
			}
			if _, err := os.Stat(f.configPath); err == nil && !force {
				return withHint(usageErrorf("init: %s already exists", f.configPath),
					"Hint: pass --force to overwrite it")
			}
			if err := a.cfg.Save(f.configPath); err != nil {
				return err
			}
			ui.SetTheme(a.cfg.UI.Theme)
			ui.OK(stdout, "wrote "+f.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("usage: todo %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("usage: todo %s", usage)
		}
		return nil
	}
}

func joinTitle(words []string) string {
	return strings.TrimSpace(strings.Join(words, " "))
}
