// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/tracelens/pkg"
	"github.com/telekom/tracelens/pkg/config"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tracelens",
		Short: "tracelens, the traceroute outage analyzer",
		Long: "tracelens selects (probe, destination) pairs whose traceroutes reliably cross a monitored\n" +
			"network region during a reference period and measures their reachability during an outage.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(func() {
		initConfig(cfgFile)
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.tracelens.yaml)")
	rootCmd.PersistentFlags().String("report", "", "write a YAML summary of the run to this file")
	rootCmd.PersistentFlags().String("metrics-file", "", "write prometheus metrics in text format to this file at the end of the run")
	rootCmd.PersistentFlags().Bool("force", false, "overwrite existing outputs")

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	pkg.Version = version
	cmd := BuildCmd(version)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func BuildCmd(version string) *cobra.Command {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(
		NewCmdExtract(),
		NewCmdAggregate(),
		NewCmdFilter(),
		NewCmdBin(),
		NewCmdVerify(),
	)
	return cmd
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tracelens" (without an extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tracelens")
	}

	viper.SetDefault("candidates.minTraceroutes", config.DefaultMinTraceroutes)
	viper.SetDefault("binning.binSize", config.DefaultBinSize)
	viper.SetDefault("binning.workers", config.DefaultWorkers)

	viper.SetOptions(viper.ExperimentalBindStruct())
	viper.SetEnvPrefix("tracelens")
	dotreplacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(dotreplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
