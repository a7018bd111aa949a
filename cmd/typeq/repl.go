package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell for rendering and running samples",
	Long: `Start an interactive shell. Samples can be rendered for the active
dialect, and run against a database once connected. When database.url is
configured the shell connects on start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		sess, err := NewSession(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return configError("starting session", err)
		}
		defer func() { _ = sess.Close() }()

		rl, err := readline.NewFromConfig(&readline.Config{
			Prompt:          "typeq> ",
			HistoryFile:     cfg.historyPath(),
			HistoryLimit:    cfg.REPL.HistoryLimit,
			AutoComplete:    &replCompleter{sess: sess},
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("readline init: %w", err)
		}
		defer func() { _ = rl.Close() }()

		if cfg.DB.URL != "" {
			if err := sess.Execute("connect"); err != nil {
				logger.Warn("configured database unavailable", "error", err)
			}
		}

		sess.printf("typeq %s shell - type 'help' for commands, 'exit' to quit\n", sess.db.Dialect().Name())
		return loop(rl, sess, cmd.ErrOrStderr())
	},
}

func loop(rl *readline.Instance, sess *Session, errOut io.Writer) error {
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if lower := strings.ToLower(line); lower == "exit" || lower == "quit" {
			return nil
		}
		if err := sess.Execute(line); err != nil {
			_, _ = fmt.Fprintf(errOut, "  Error: %v\n", err)
		}
	}
}
