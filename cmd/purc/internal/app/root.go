package app

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/purc-lang/purc/internal/config"
	"github.com/purc-lang/purc/internal/xlog"
)

var (
	cfgFile string
	red     = color.New(color.FgRed).SprintfFunc()
)

var rootCmd = &cobra.Command{
	Use:   "purc",
	Short: "An interpreter for HVML documents",
	Long:  "https://github.com/purc-lang/purc",
	Args:  cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.Verbose {
			xlog.SetLevel(zerolog.DebugLevel)
		}
		if cfg.NoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(func() {})
	config.BindFlags(rootCmd, &cfgFile)
	rootCmd.AddCommand(runCmd)
	viper.SetDefault("renderer-url", "")
}

// Execute runs the purc root command.
func Execute() error {
	return rootCmd.Execute()
}
