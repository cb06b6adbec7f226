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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RecoverCmd represents the recover command
var RecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a test field on a spline surface and report its error",
	Long: `
Samples an analytic test field (or the gradient of its spline interpolant) at
integration points and recovers a spline field from the samples,

splinerecovery recover -I case.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		level, _ := cmd.Flags().GetInt("level")
		rp, err := readCase(icFile)
		if err != nil {
			return
		}
		rp.Print()
		cr, err := RunCase(rp, level, viper.GetInt("parallel"), logger)
		if err != nil {
			return
		}
		fmt.Printf("%d elements, %d basis functions, h = %8.5f\n", cr.Elements, cr.BasisFunctions, cr.H)
		for c := range cr.MaxError {
			fmt.Printf("component %d: max error = %12.5e, rms error = %12.5e\n", c, cr.MaxError[c], cr.RMSError[c])
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(RecoverCmd)
	RecoverCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the recovery case")
	RecoverCmd.Flags().IntP("level", "l", 0, "uniform refinement level, doubling the element counts per level")
}
