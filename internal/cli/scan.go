package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
)

type scanOptions struct {
	asJSON    bool
	maxColors int
}

func newScanCmd(a *app) *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan <document>",
		Short: "Summarise a document snapshot",
		Long: `Walk a document snapshot and report element types, solid fill colours,
text styles, component instances, library elements and viewport zones.

On a terminal the colour table includes a preview of each colour.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			analysis := doc.Scan()
			a.log(cmd).Debug("document scanned", "name", doc.Name, "elements", analysis.TotalElements)

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}
			return printScan(cmd.OutOrStdout(), doc, analysis, opts.maxColors)
		},
	}
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().IntVar(&opts.maxColors, "max-colors", 16, "colours to list, most used first (0 for all)")
	return cmd
}

type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func printScan(w io.Writer, doc *document.Document, a *document.Analysis, maxColors int) error {
	preview := previewEnabled(w)

	fmt.Fprintf(w, "%s / %s: %d elements\n\n", doc.Name, doc.Page.Name, a.TotalElements)

	types := NewTable("Type", "Count")
	for _, tc := range a.SortedTypes() {
		types.AddRow(tc.Type, strconv.Itoa(tc.Count))
	}
	fmt.Fprintln(w, types.Render())

	colours := sortedCounts(a.ColorPalette)
	if maxColors > 0 && len(colours) > maxColors {
		colours = colours[:maxColors]
	}
	if len(colours) > 0 {
		headers := []string{"Hex", "Uses"}
		if preview {
			headers = append([]string{"Colour"}, headers...)
		}
		table := NewTable(headers...)
		for _, kc := range colours {
			c, ok := colour.ParseKey(kc.key)
			if !ok {
				continue
			}
			row := []string{c.Hex(), strconv.Itoa(kc.count)}
			if preview {
				row = append([]string{colour.ColourPreview(c.RGB(), 6)}, row...)
			}
			table.AddRow(row...)
		}
		fmt.Fprintf(w, "Colours (%d distinct)\n%s\n", len(a.ColorPalette), table.Render())
	}

	if len(a.TextStyles) > 0 {
		table := NewTable("Text style", "Uses")
		for _, kc := range sortedCounts(a.TextStyles) {
			table.AddRow(kc.key, strconv.Itoa(kc.count))
		}
		fmt.Fprintln(w, table.Render())
	}

	if len(a.ComponentInstances) > 0 {
		table := NewTable("Instance", "Component", "Bounds")
		table.SetColumnMaxWidth(0, 32)
		for _, inst := range a.ComponentInstances {
			bounds := "-"
			if inst.Bounds != nil {
				bounds = inst.Bounds.String()
			}
			table.AddRow(inst.Name, inst.MainComponentID, bounds)
		}
		fmt.Fprintln(w, table.Render())
	}

	if len(a.LibraryElements) > 0 {
		table := NewTable("Library element", "Type", "Key")
		for _, el := range a.LibraryElements {
			table.AddRow(el.Name, el.Type, el.Key)
		}
		fmt.Fprintln(w, table.Render())
	}

	zones := NewTable("Zone", "Bounds")
	for _, z := range a.SpatialZones {
		zones.AddRow(z.Name, z.Rect.String())
	}
	return zones.Write(w)
}
