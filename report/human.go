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
package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// barWidth is the full-scale width, in characters, of a weight bar.
const barWidth = 30

// WriteHumanTrace renders t to w the way pterm-based reporters in the
// corpus render structured results: a headline, a colored weight bar per
// heavy package, and a table.
func WriteHumanTrace(w io.Writer, t Trace) {
	fmt.Fprintf(w, "%s %s\n", pterm.Bold.Sprint("Entry:"), t.Entry)
	fmt.Fprintf(w, "%s %s (%d modules)\n",
		pterm.Bold.Sprint("Static weight:"),
		humanSize(t.StaticWeightBytes), t.StaticModuleCount)
	if t.DynamicOnlyModuleCount > 0 {
		fmt.Fprintf(w, "%s %s (%d modules)\n",
			pterm.Gray("Dynamic-only weight:"),
			humanSize(t.DynamicOnlyWeightBytes), t.DynamicOnlyModuleCount)
	}
	if t.UnresolvableDynamic > 0 {
		fmt.Fprintf(w, "%s %d\n", pterm.Yellow("Unresolvable dynamic imports:"), t.UnresolvableDynamic)
	}
	if len(t.UnresolvedSpecifiers) > 0 {
		fmt.Fprintf(w, "%s %d\n", pterm.Yellow("Unresolved specifiers:"), len(t.UnresolvedSpecifiers))
	}

	if len(t.HeavyPackages) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, pterm.Bold.Sprint("Heavy packages:"))

	var maxSize int64
	for _, h := range t.HeavyPackages {
		if h.SizeBytes > maxSize {
			maxSize = h.SizeBytes
		}
	}

	rows := [][]string{{"Package", "Size", "Files", "Bar"}}
	for _, h := range t.HeavyPackages {
		rows = append(rows, []string{
			h.Name,
			humanSize(h.SizeBytes),
			fmt.Sprintf("%d", h.FileCount),
			weightBar(h.SizeBytes, maxSize),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Srender()
	if err == nil {
		fmt.Fprintln(w, table)
	}
}

// WriteHumanWhy renders why's chain enumeration as a tree, one branch per
// chain, matching the corpus's use of pterm.DefaultTree for nested results.
func WriteHumanWhy(out io.Writer, why Why) {
	fmt.Fprintf(out, "%s %s (%d hops, %d chains)\n",
		pterm.Bold.Sprint("Why:"), why.Package, why.HopCount, len(why.Chains))

	root := pterm.TreeNode{Text: why.Package}
	for i, chain := range why.Chains {
		node := pterm.TreeNode{Text: fmt.Sprintf("chain %d", i+1)}
		for _, step := range chain {
			node.Children = append(node.Children, pterm.TreeNode{Text: step})
		}
		root.Children = append(root.Children, node)
	}

	rendered, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err == nil {
		fmt.Fprintln(out, rendered)
	}
}

// WriteHumanDiff renders a trace-diff comparison.
func WriteHumanDiff(w io.Writer, d Diff) {
	fmt.Fprintf(w, "%s %s vs %s (delta %s)\n",
		pterm.Bold.Sprint("Diff:"),
		humanSize(d.WeightA), humanSize(d.WeightB), humanSignedSize(d.DeltaBytes))

	if len(d.OnlyInA) > 0 {
		fmt.Fprintf(w, "%s %v\n", pterm.Red("Only in A:"), d.OnlyInA)
	}
	if len(d.OnlyInB) > 0 {
		fmt.Fprintf(w, "%s %v\n", pterm.Green("Only in B:"), d.OnlyInB)
	}
	fmt.Fprintf(w, "%s %v\n", pterm.Gray("In both:"), d.InBoth)
}

func weightBar(size, max int64) string {
	if max == 0 {
		return ""
	}
	filled := int(float64(size) / float64(max) * barWidth)
	if filled < 1 && size > 0 {
		filled = 1
	}
	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return pterm.LightBlue(bar)
}

func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func humanSignedSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanSize(-bytes)
	}
	return "+" + humanSize(bytes)
}
