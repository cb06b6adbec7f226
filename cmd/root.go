/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  = logr.Discard()
	stopper interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splinerecovery",
	Short: "Recover smooth spline fields from integration point samples",
	Long: `
Projects and recovers fields on tensor product spline surfaces using global L2
projection, superconvergent patch recovery and Greville point interpolation.

splinerecovery recover -I case.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if logger, err = newLogger(viper.GetBool("verbose")); err != nil {
			return
		}
		switch viper.GetString("profile") {
		case "":
		case "cpu":
			stopper = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
		case "mem":
			stopper = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
		default:
			return fmt.Errorf("unknown profile %q, use cpu or mem", viper.GetString("profile"))
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopper != nil {
			stopper.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.splinerecovery.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log recovery diagnostics")
	rootCmd.PersistentFlags().IntP("parallel", "p", runtime.NumCPU(), "number of parallel workers")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the current directory")
	for _, name := range []string{"verbose", "parallel", "profile"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".splinerecovery")
	}
	viper.SetEnvPrefix("splinerecovery")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (log logr.Logger, err error) {
	var zl *zap.Logger
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		// logr V(1) maps to zap level -1
		cfg.Level = zap.NewAtomicLevelAt(-1)
		zl, err = cfg.Build()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
