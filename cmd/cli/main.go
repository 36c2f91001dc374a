// cmd/cli/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/keshon/commandbot/internal/commands/core"
	_ "github.com/keshon/commandbot/internal/commands/fun"

	"github.com/keshon/commandbot/internal/bot"
	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/dispatch"
	"github.com/keshon/commandbot/internal/docs"
	"github.com/keshon/commandbot/internal/logging"
	v "github.com/keshon/commandbot/internal/version"
)

func main() {
	if err := newRootCommand(loadBot).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadBot() (*bot.Bot, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	overrides, err := config.LoadOverrides(cfg.CommandsFile)
	if err != nil {
		return nil, err
	}
	return bot.New(cfg, overrides, command.Declared()), nil
}

func newRootCommand(build func() (*bot.Bot, error)) *cobra.Command {
	root := &cobra.Command{
		Use:          "commandbot",
		Short:        "Inspect and try bot commands from the terminal",
		Version:      v.Get().Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(v.String() + "\n")
	root.AddCommand(newCommandsCommand(build), newRunCommand(build), newDocsCommand(build))
	return root
}

func newCommandsCommand(build func() (*bot.Bot, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "commands",
		Short:   "List loaded commands by category",
		Example: `commandbot commands`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, cat := range b.Registry.Categories() {
				fmt.Fprintln(out, cat)
				for _, c := range b.Registry.ByCategory(cat) {
					fmt.Fprintf(out, "  %-10s %-12s %s\n", c.Name(), surfaceLabel(c), c.Description())
				}
			}
			return nil
		},
	}
}

func newRunCommand(build func() (*bot.Bot, error)) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:     "run <command> [args...]",
		Short:   "Dispatch one message-style command and print the replies",
		Example: `commandbot run roll 2d6`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := build()
			if err != nil {
				return err
			}
			prefix := b.Dispatcher.Prefix("")
			text := strings.Join(args, " ")
			if !strings.HasPrefix(text, prefix) {
				text = prefix + text
			}

			msg := &consoleMessage{content: text, user: user, out: cmd.OutOrStdout()}
			res := b.Dispatcher.HandleMessage(msg)
			switch res.Outcome {
			case dispatch.OutcomeNotFound:
				return fmt.Errorf("unknown command %q", args[0])
			case dispatch.OutcomeFailed:
				return res.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "console", "user ID the command runs as")
	return cmd
}

func newDocsCommand(build func() (*bot.Bot, error)) *cobra.Command {
	var tmplPath, outPath string
	cmd := &cobra.Command{
		Use:     "docs",
		Short:   "Render the command reference, optionally through a README template",
		Example: `commandbot docs --template README.md.tmpl --out README.md`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := build()
			if err != nil {
				return err
			}
			var tmpl string
			if tmplPath != "" {
				data, err := os.ReadFile(tmplPath)
				if err != nil {
					return err
				}
				tmpl = string(data)
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return docs.Render(w, tmpl, b.Registry, b.Dispatcher.Prefix(""))
		},
	}
	cmd.Flags().StringVar(&tmplPath, "template", "", "README template with {{.CommandSections}}")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func surfaceLabel(c command.Command) string {
	text, slash := command.Surfaces(c)
	switch {
	case text && slash:
		return "text+slash"
	case slash:
		return "slash"
	default:
		return "text"
	}
}
