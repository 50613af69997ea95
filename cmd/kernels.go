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
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/gospectral/kernels"
)

// KernelsCmd represents the kernels command
var KernelsCmd = &cobra.Command{
	Use:   "kernels",
	Short: "Show the resolved kernel table",
	Long: `
Prints which backend each dense kernel resolved to. Select the backend with
-O / --optimization, the GOSPECTRAL_OPTIMIZATION environment variable or the
optimization key of the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("available backends: %s\n", strings.Join(kernels.Backends(), ", "))
		fmt.Print(kernels.Default().String())
	},
}

func init() {
	rootCmd.AddCommand(KernelsCmd)
}
