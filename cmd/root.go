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
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gospectral/kernels"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gospectral",
	Short: "Spectral Galerkin transforms and operator assembly in one dimension",
	Long: `
Builds Fourier, Chebyshev and Legendre bases, transforms between point values
and modal coefficients, and assembles and solves Galerkin operators.

gospectral poisson1d --family legendre -N 32`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if err = setLogLevel(); err != nil {
			return
		}
		switch p := strings.ToLower(viper.GetString("profile")); p {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
		default:
			return fmt.Errorf("unknown profile type %q, use cpu or mem", p)
		}
		t := kernels.Configure(kernels.ConfigFromViper(viper.GetViper()))
		log.WithField("backend", t.Config.Backend).Debug("kernels configured")
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gospectral.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug level logging, overrides log_level")
	rootCmd.PersistentFlags().String("log_level", "warning", "logrus level: panic, fatal, error, warning, info, debug, trace")
	rootCmd.PersistentFlags().StringP("optimization", "O", kernels.DefaultBackend,
		"kernel backend: "+strings.Join(kernels.Backends(), ", "))
	rootCmd.PersistentFlags().Int("threads", 0, "worker count for the parallel backend, 0 uses all cores")
	rootCmd.PersistentFlags().String("profile", "", "write a pprof profile to the working directory: cpu or mem")
	for _, name := range []string{"verbose", "log_level", "optimization", "threads", "profile"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gospectral")
	}
	viper.SetEnvPrefix("GOSPECTRAL")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Info("using config file")
	}
}

func setLogLevel() (err error) {
	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
		return
	}
	var lvl log.Level
	if lvl, err = log.ParseLevel(viper.GetString("log_level")); err != nil {
		return
	}
	log.SetLevel(lvl)
	return
}
