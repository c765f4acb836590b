// Package main provides the CLI entry point for docxedit.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/docxtools/docxedit/pkg/docxedit"
)

var (
	outputPath string
	asJSON     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docxedit",
		Short: "Index-addressed editing of DOCX documents",
		Long: `docxedit reads and edits Word documents through three zero-based index
spaces (paragraphs, tables, images), designed for automated agents that
issue discrete edit operations.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of a table")

	rootCmd.AddCommand(
		outlineCmd(),
		readCmd(),
		tablesCmd(),
		tableCmd(),
		imagesCmd(),
		applyCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func outlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <document.docx>",
		Short: "List heading paragraphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}
			outline := ed.GetOutline()
			if asJSON {
				return printJSON(outline)
			}
			fmt.Printf("%d paragraphs, %d headings\n", outline.TotalParagraphs, len(outline.Headings))
			for _, h := range outline.Headings {
				indent := strings.Repeat("  ", h.Level-1)
				fmt.Printf("[%4d] %s%s\n", h.Index, indent, h.Text)
			}
			return nil
		},
	}
}

func readCmd() *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "read <document.docx> [index...]",
		Short: "Read paragraph content by index, range or section title",
		Long: `Read paragraph content. Indices may be single numbers or start-end
ranges; with --section, reads every paragraph of the named section
instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}

			var sel docxedit.Selector
			if section != "" {
				sel = docxedit.SectionSelector{Title: section}
			} else {
				indices, err := parseIndices(args[1:])
				if err != nil {
					return err
				}
				sel = docxedit.IndicesSelector(indices)
			}

			contents := ed.ReadContent(sel)
			if asJSON {
				return printJSON(contents)
			}
			for _, c := range contents {
				marker := " "
				if c.IsHeading {
					marker = "#"
				}
				fmt.Printf("[%4d]%s %s (%s)\n", c.Index, marker, c.Text, c.Style)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "Read the section whose heading contains this title")
	return cmd
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <document.docx>",
		Short: "List tables with shape and preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}
			outline := ed.GetTablesOutline()
			if asJSON {
				return printJSON(outline)
			}
			for _, t := range outline {
				preview := runewidth.Truncate(t.Preview, 50, "…")
				fmt.Printf("[%3d] %dx%d %s\n", t.TableIndex, t.Rows, t.Cols, preview)
			}
			return nil
		},
	}
}

func tableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <document.docx> <index>",
		Short: "Print the full cell grid of one table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid table index %q", args[1])
			}
			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}
			data, err := ed.ReadTable(index)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(data)
			}
			printTable(data)
			return nil
		},
	}
}

func imagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images <document.docx>",
		Short: "List inline images with kind and size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}
			outline := ed.GetImagesOutline()
			if asJSON {
				return printJSON(outline)
			}
			for _, img := range outline {
				size := "size unset"
				if img.WidthCm != nil && img.HeightCm != nil {
					size = fmt.Sprintf("%.2fcm x %.2fcm", *img.WidthCm, *img.HeightCm)
				}
				fmt.Printf("[%3d] %-15s %s\n", img.ImageIndex, img.Kind, size)
			}
			return nil
		},
	}
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <document.docx> <operations.json>",
		Short: "Apply a batch of edit operations",
		Long: `Apply a JSON array of operations to the document and print the batch
report. The document is written back in place unless -o names another
output path. Use "-" to read operations from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opsData []byte
			var err error
			if args[1] == "-" {
				opsData, err = readStdin()
			} else {
				opsData, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read operations: %w", err)
			}

			ops, err := docxedit.ParseOperations(opsData)
			if err != nil {
				return err
			}

			ed, err := docxedit.Open(args[0])
			if err != nil {
				return err
			}

			report := ed.BatchUpdate(ops)

			target := args[0]
			if outputPath != "" {
				target = outputPath
			}
			if err := ed.SaveAs(target); err != nil {
				return err
			}

			if err := printJSON(report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d operations failed", report.Failed, report.Failed+report.Success)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: overwrite input)")
	return cmd
}

// parseIndices expands arguments like "3" and "5-9" into an index list.
func parseIndices(args []string) ([]int, error) {
	var indices []int
	for _, arg := range args {
		if start, end, ok := strings.Cut(arg, "-"); ok {
			from, err1 := strconv.Atoi(start)
			to, err2 := strconv.Atoi(end)
			if err1 != nil || err2 != nil || to < from {
				return nil, fmt.Errorf("invalid index range %q", arg)
			}
			for i := from; i <= to; i++ {
				indices = append(indices, i)
			}
			continue
		}
		i, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", arg)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// printTable renders the cell grid with display-width-aware columns, so CJK
// cell text stays aligned.
func printTable(data *docxedit.TableData) {
	widths := make([]int, data.Cols)
	for _, row := range data.Cells {
		for col, text := range row {
			if col >= len(widths) {
				continue
			}
			w := runewidth.StringWidth(firstLine(text))
			if w > widths[col] {
				widths[col] = w
			}
		}
	}

	for _, row := range data.Cells {
		cells := make([]string, 0, len(row))
		for col, text := range row {
			w := 0
			if col < len(widths) {
				w = widths[col]
			}
			cells = append(cells, runewidth.FillRight(firstLine(text), w))
		}
		fmt.Println("| " + strings.Join(cells, " | ") + " |")
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx] + "…"
	}
	return s
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func readStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
