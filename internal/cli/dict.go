package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmueller/voxkey/internal/dict"
)

func newDictCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict [text]",
		Short: "Inspect the replacement dictionary or run it against sample text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.dictionaryPath()
			if err != nil {
				return err
			}

			cfg, err := dict.Load(path)
			if err != nil {
				if !errors.Is(err, dict.ErrParse) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: %v (using empty dictionary)\n", err)
			}

			if len(args) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Apply(args[0]))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Dictionary: %s\n", path)
			if cfg.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No hotwords, replacements, or initial prompt configured.")
				return nil
			}

			if hotwords := cfg.Hotwords(); len(hotwords) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Hotwords (%d):\n", len(hotwords))
				for _, word := range hotwords {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", word)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replacement rules: %d\n", cfg.ReplacementCount())
			if prompt := cfg.InitialPrompt(); prompt != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initial prompt: %s\n", prompt)
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindDictionaryFlag(cmd, app)

	return cmd
}
