// Package config loads PurC's CLI configuration the way the teacher's
// cmd/risor/root.go loads its own: viper merging a config file, the
// PURC_ environment prefix, and bound pflag values, with the config
// file resolved via go-homedir when no --config path is given.
package config

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved set of options every purc subcommand reads.
type Config struct {
	NoColor    bool   `mapstructure:"no-color"`
	RendererURL string `mapstructure:"renderer-url"`
	DumpEJSON  bool   `mapstructure:"dump-ejson"`
	Verbose    bool   `mapstructure:"verbose"`
}

// BindFlags registers purc's persistent flags on cmd and binds each one
// into viper under the PURC_ environment prefix, mirroring the teacher's
// init()/initConfig() split in cmd/risor/root.go.
func BindFlags(cmd *cobra.Command, cfgFile *string) {
	viper.SetEnvPrefix("purc")
	viper.AutomaticEnv()

	cmd.PersistentFlags().StringVar(cfgFile, "config", "", "config file (default $HOME/.purc.yaml)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().String("renderer-url", "", "renderer bridge endpoint")
	cmd.PersistentFlags().Bool("dump-ejson", false, "pretty-print ejson dumps")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range []string{"no-color", "renderer-url", "dump-ejson", "verbose"} {
		viper.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}
}

// Load reads cfgFile (or $HOME/.purc.yaml if empty) into viper and
// unmarshals the merged configuration.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".purc")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
