package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveltomanga/internal/config"
)

var configSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one renderer preference (theme, centered, fontsize, margin, pageheight, pagewidth)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := config.ParseField(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.Update(field, args[1]); err != nil {
			return err
		}

		texts := config.TextsFor(s.cfg.Lang)
		fmt.Printf("%s: %s\n", texts.Titles[field], displayValue(texts, field, s.store.Snapshot()))
		return nil
	},
}

var configPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show the renderer preferences of the selected source",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(config.Options{})
		if err != nil {
			return err
		}
		defer s.Close()

		texts := config.TextsFor(s.cfg.Lang)
		cur := s.store.Snapshot()

		fmt.Printf("Source: %s (%s)\n\n", s.cfg.Source, s.cfg.PrefsBackend)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "FIELD\tKEY\tVALUE")
		for _, f := range config.Fields {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", texts.Titles[f], f.Key(), displayValue(texts, f, cur))
		}

		return w.Flush()
	},
}

func displayValue(texts config.Texts, f config.Field, cfg config.RendererConfig) string {
	v := cfg.Value(f)
	if f == config.FieldTheme {
		if name, ok := texts.ThemeNames[cfg.Theme]; ok {
			return fmt.Sprintf("%s (%s)", name, strings.ToUpper(v))
		}
	}

	return v
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPrefsCmd)
}
