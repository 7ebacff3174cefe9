/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package chainsaw wires the chainsaw CLI: a cobra root command plus the
// trace subcommand, matching the cobra/viper surface mappa's main.go and
// cmd/trace package establish.
package chainsaw

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cpuprofile     string
	cpuprofileFile *os.File

	// RootCmd is the top-level "chainsaw" command.
	RootCmd = &cobra.Command{
		Use:   "chainsaw",
		Short: "Analyze the transitive import weight of a JS/TS module graph",
		Long: `chainsaw scans a project rooted at a package.json, starts at a chosen
entry file, and reports how many bytes of code that entry point transitively
pulls in, which packages dominate that weight, and what chain of imports
causes a given package to be loaded.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				cpuprofileFile = f
				if err := pprof.StartCPUProfile(f); err != nil {
					closeErr := f.Close()
					return errors.Join(
						fmt.Errorf("could not start CPU profile: %w", err),
						closeErr,
					)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofileFile != nil {
				pprof.StopCPUProfile()
				if err := cpuprofileFile.Close(); err != nil {
					return fmt.Errorf("closing CPU profile: %w", err)
				}
			}
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringP("package", "p", ".", "Project directory (not read by trace, which finds the project root by walking up from the entry file)")
	RootCmd.PersistentFlags().StringP("output", "o", "", "Output file (default: stdout)")
	RootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	_ = viper.BindPFlag("package", RootCmd.PersistentFlags().Lookup("package"))
	_ = viper.BindPFlag("output", RootCmd.PersistentFlags().Lookup("output"))

	RootCmd.AddCommand(traceCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
