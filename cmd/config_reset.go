package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveltomanga/internal/config"
)

var flagResetRendererOnly bool

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config and the renderer preferences of the source to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagResetRendererOnly && !flagIgnoreConfig {
			activePath, err := config.ActiveConfigPath()
			switch {
			case errors.Is(err, config.ErrNoConfig):
				fmt.Println("No active config, only renderer preferences are reset.")
			case err != nil:
				return err
			default:
				if err := config.SaveYAML(config.DefaultConfig(), activePath); err != nil {
					return err
				}
				fmt.Printf("Reset active config: %s\n", activePath)
			}
		}

		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}
		defer s.Close()

		texts := config.TextsFor(s.cfg.Lang)
		changed, err := s.store.Reset()
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", texts.ResetTitle, s.cfg.Source)
		if changed {
			fmt.Println(texts.ReopenNotice)
		}

		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVar(&flagResetRendererOnly, "renderer-only", false, "keep the config profile, reset only renderer preferences")
	configCmd.AddCommand(configResetCmd)
}
