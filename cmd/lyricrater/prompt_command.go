package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lyricrater/internal/rating"
)

func newPromptCommand(ctx *commandContext) *cobra.Command {
	var title, lyric string
	var reason bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt that would be sent for one song",
		Long: `Render the classification prompt for a single title and lyric without
contacting any provider. Useful for checking wording and escaping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" && strings.TrimSpace(lyric) == "" {
				return errors.New("at least one of --title or --lyric is required")
			}
			if !cmd.Flags().Changed("reason") {
				if cfg, err := ctx.ensureConfig(); err == nil {
					reason = cfg.Classification.IncludeReason
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), rating.BuildPrompt(title, lyric, reason))
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Song title")
	cmd.Flags().StringVar(&lyric, "lyric", "", "Song lyric")
	cmd.Flags().BoolVar(&reason, "reason", false, "Render the variant that asks for a reason")
	return cmd
}
