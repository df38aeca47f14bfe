package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Genzer/todo.txt-des/internal/config"
	"github.com/Genzer/todo.txt-des/internal/description"
	"github.com/Genzer/todo.txt-des/internal/editor"
	"github.com/Genzer/todo.txt-des/internal/todotxt"
	"github.com/Genzer/todo.txt-des/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "des",
		Short: "Attach long descriptions to todo.txt tasks",
		Long:  "Store multi-line descriptions for todo.txt tasks in separate text files, linked from the task line by a des:<id> tag. Works standalone or as a todo.sh addon.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "maintenance", Title: "Maintenance:"},
	)

	addC := addCmd()
	addC.GroupID = "core"
	showC := showCmd()
	showC.GroupID = "core"
	editC := editCmd()
	editC.GroupID = "core"
	listC := listCmd()
	listC.GroupID = "core"
	rmC := rmCmd()
	rmC.GroupID = "core"

	doctorC := doctorCmd()
	doctorC.GroupID = "maintenance"
	configC := configCmd()
	configC.GroupID = "maintenance"

	rootCmd.AddCommand(addC)
	rootCmd.AddCommand(showC)
	rootCmd.AddCommand(editC)
	rootCmd.AddCommand(listC)
	rootCmd.AddCommand(rmC)
	rootCmd.AddCommand(doctorC)
	rootCmd.AddCommand(configC)
	rootCmd.AddCommand(completionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseTaskID(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task number %q", arg)
	}
	return n, nil
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <task-number> <description>",
		Aliases: []string{"a"},
		Short:   "Attach a description to a task",
		Long:    "Write the description text to a new file under TODO_DIR/descriptions and tag the task line with its identifier. Pass '-' as the description to read the text from stdin. A task that already carries a tag gets the tag replaced; the old description file stays on disk.",
		Example: "  des add 3 \"Call the plumber about the kitchen leak\"\n  git log -5 | des add 3 -",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			index, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			text := args[1]
			if text == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("cannot read description from stdin: %w", err)
				}
				text = strings.TrimRight(string(data), " \t\r\n")
			}
			task, err := todotxt.Find(cfg.TodoFile, index)
			if err != nil {
				return err
			}
			id, err := description.NewID(cfg)
			if err != nil {
				return err
			}
			if err := description.Write(cfg, id, text); err != nil {
				return err
			}
			if err := todotxt.Retag(cfg.TodoFile, index, id); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Task #%d tagged des:%s", index, id))
			if task.DescriptionID != "" {
				ui.Detail("replaced:", "des:"+task.DescriptionID)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:     "show <task-number>",
		Aliases: []string{"s"},
		Short:   "Print the description attached to a task",
		Example: "  des show 3\n  des show 3 --render",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			index, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := todotxt.Find(cfg.TodoFile, index)
			if err != nil {
				return err
			}
			if task.DescriptionID == "" {
				return fmt.Errorf("no description found for task #%d", index)
			}
			text, err := description.Read(cfg, task.DescriptionID)
			if err != nil {
				return err
			}
			doRender := cfg.Settings.Render
			if cmd.Flags().Changed("render") {
				doRender = render
			}
			if doRender {
				fmt.Print(ui.RenderMarkdown(text))
				return nil
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the description as markdown")
	return cmd
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "edit <task-number>",
		Aliases: []string{"e"},
		Short:   "Open the description attached to a task in your editor",
		Long:    "Open the task's description file in an external editor and wait for it to close. The editor comes from EDITOR, then TODO_DESCRIPTION_EDITOR, then the editor settings key, falling back to vi.",
		Example: "  des edit 3\n  EDITOR=nano des edit 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			index, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := todotxt.Find(cfg.TodoFile, index)
			if err != nil {
				return err
			}
			if task.DescriptionID == "" {
				return fmt.Errorf("no description found for task #%d", index)
			}
			path, err := description.Locate(cfg, task.DescriptionID)
			if err != nil {
				return err
			}
			ed := editor.Editor{Command: cfg.Editor}
			if err := ed.Available(); err != nil {
				return err
			}
			if err := ed.Open(path); err != nil {
				var exitErr *editor.ExitError
				if errors.As(err, &exitErr) {
					ui.Logger.Warn("editor exited with a non-zero status", "code", exitErr.Code)
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks that have descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tasks, err := todotxt.List(cfg.TodoFile)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, task := range tasks {
				if task.DescriptionID == "" {
					continue
				}
				summary := ""
				text, err := description.Read(cfg, task.DescriptionID)
				if err != nil {
					summary = ui.Red("missing")
				} else {
					summary = firstLine(text)
				}
				rows = append(rows, []string{strconv.Itoa(task.Index), task.DescriptionID, summary})
			}
			if len(rows) == 0 {
				ui.EmptyState("No tasks have descriptions. Use 'des add <task-number> <text>' to attach one.")
				return nil
			}
			ui.Table([]string{"TASK", "ID", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

// firstLine returns the first line of text, truncated for table display.
func firstLine(text string) string {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}

func rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <task-number>",
		Short: "Remove the description tag from a task",
		Long:  "Strip the des:<id> tag from a task line. The description file itself stays on disk and can be re-attached later.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			index, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := todotxt.Find(cfg.TodoFile, index)
			if err != nil {
				return err
			}
			if task.DescriptionID == "" {
				return fmt.Errorf("no description found for task #%d", index)
			}
			if !yes {
				proceed, err := ui.Confirm(fmt.Sprintf("Remove tag des:%s from task #%d?", task.DescriptionID, index))
				if err != nil {
					return err
				}
				if !proceed {
					ui.Info("Cancelled.")
					return nil
				}
			}
			if err := todotxt.Untag(cfg.TodoFile, index); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Task #%d untagged", index))
			ui.Detail("kept:", cfg.Path("descriptions", task.DescriptionID+".txt"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func doctorCmd() *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check health of the todo file and description store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if fix {
				fixed := config.FixIssues(cfg)
				for _, f := range fixed {
					ui.Success(fmt.Sprintf("[FIXED] %s", f))
				}
				if len(fixed) == 0 {
					ui.EmptyState("Nothing to fix.")
				}
			}

			// Collect all issues
			issues := config.CheckHealth(cfg)
			if tasks, err := todotxt.List(cfg.TodoFile); err == nil {
				issues = append(issues, description.CheckIntegrity(cfg, tasks)...)
			}

			// Check editor availability
			ed := editor.Editor{Command: cfg.Editor}
			if err := ed.Available(); err != nil {
				issues = append(issues, config.Issue{Severity: "warning", Message: fmt.Sprintf("editor: %v", err)})
			}

			if len(issues) == 0 {
				ui.Success("Everything looks good")
				os.Exit(0)
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					ui.Error(fmt.Sprintf("[ERR]  %s", issue.Message))
					hasError = true
				} else {
					ui.Warning(fmt.Sprintf("[WARN] %s", issue.Message))
				}
			}

			if hasError {
				os.Exit(2)
			}
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Create missing directories before checking")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit des settings",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			view := struct {
				TodoDir  string `yaml:"todo_dir"`
				TodoFile string `yaml:"todo_file"`
				Editor   string `yaml:"editor"`
				Render   bool   `yaml:"render"`
			}{cfg.TodoDir, cfg.TodoFile, cfg.Editor, cfg.Settings.Render}
			data, err := yaml.Marshal(view)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a settings value",
		Long:  "Set a persistent settings value, stored in des.yaml inside TODO_DIR. Valid keys: editor, render.",
		Example: `  des config set editor "code --wait"
  des config set render true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.SetValue(args[0], args[1]); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Long:      "Generate shell completion scripts for bash, zsh, or fish. Output the script to stdout for sourcing in your shell profile.",
		Example:   "  des completion bash > ~/.bashrc.d/des\n  des completion zsh > ~/.zfunc/_des\n  des completion fish > ~/.config/fish/completions/des.fish",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", args[0])
			}
		},
	}
}
