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
	"io"
	"math"
	"os"

	"github.com/go-logr/logr"
	"github.com/notargets/splinerecovery/InputParameters"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Run a recovery case on uniformly refined meshes and report the observed order",
	Long: `
Runs the recovery case of the input file on levels 0..l, doubling the element
counts per level, and prints the errors with the observed convergence order,

splinerecovery convergence -I case.yaml -l 4`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		levels, _ := cmd.Flags().GetInt("levels")
		rp, err := readCase(icFile)
		if err != nil {
			return
		}
		rp.Print()
		cs, err := RunConvergenceStudy(rp, levels, viper.GetInt("parallel"), logger)
		if err != nil {
			return
		}
		cs.Print(os.Stdout)
		return
	},
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the recovery case")
	ConvergenceCmd.Flags().IntP("levels", "l", 3, "number of refinements")
}

type ConvergenceStudy struct {
	title              string
	order              [2]int
	method             InputParameters.Method
	numElements        []int
	h                  []float64
	eRMS, eMAX         [][]float64 // per level, per component
	orderRMS, orderMAX [][]float64 // observed order between consecutive levels
}

func NewConvergenceStudy(rp *InputParameters.RecoveryParameters) *ConvergenceStudy {
	return &ConvergenceStudy{
		title:  rp.Title,
		order:  rp.Order,
		method: rp.Method,
	}
}

func (cs *ConvergenceStudy) Add(cr *CaseResult) {
	if n := len(cs.h); n > 0 {
		ratio := math.Log(cs.h[n-1] / cr.H)
		cs.orderRMS = append(cs.orderRMS, observedOrder(cs.eRMS[n-1], cr.RMSError, ratio))
		cs.orderMAX = append(cs.orderMAX, observedOrder(cs.eMAX[n-1], cr.MaxError, ratio))
	}
	cs.numElements = append(cs.numElements, cr.Elements)
	cs.h = append(cs.h, cr.H)
	cs.eRMS = append(cs.eRMS, cr.RMSError)
	cs.eMAX = append(cs.eMAX, cr.MaxError)
}

// observedOrder is log(e_coarse/e_fine)/log(h_coarse/h_fine), NaN for a vanishing error
func observedOrder(coarse, fine []float64, ratio float64) (ord []float64) {
	ord = make([]float64, len(fine))
	for c := range fine {
		if coarse[c] == 0 || fine[c] == 0 || ratio == 0 {
			ord[c] = math.NaN()
			continue
		}
		ord[c] = math.Log(coarse[c]/fine[c]) / ratio
	}
	return
}

func (cs *ConvergenceStudy) Print(w io.Writer) {
	fmt.Fprintf(w, "Title = %s, Order = %v, Method = %s\n", cs.title, cs.order, cs.method)
	for i := range cs.h {
		fmt.Fprintf(w, "%d, %v", cs.numElements[i], cs.h[i])
		for c := range cs.eRMS[i] {
			fmt.Fprintf(w, ", %v, %v", cs.eRMS[i][c], cs.eMAX[i][c])
			if i > 0 {
				fmt.Fprintf(w, ", %5.2f, %5.2f", cs.orderRMS[i-1][c], cs.orderMAX[i-1][c])
			}
		}
		fmt.Fprintln(w)
	}
}

func RunConvergenceStudy(rp *InputParameters.RecoveryParameters, levels, parallel int,
	log logr.Logger) (cs *ConvergenceStudy, err error) {
	cs = NewConvergenceStudy(rp)
	for level := 0; level <= levels; level++ {
		var cr *CaseResult
		if cr, err = RunCase(rp, level, parallel, log.WithValues("level", level)); err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		cs.Add(cr)
	}
	return
}
