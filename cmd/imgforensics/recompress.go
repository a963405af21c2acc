package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/recompress"
)

var recompressFlags struct {
	Page   int
	DPI    int
	Format string
}

var recompressCmd = &cobra.Command{
	Use:   "recompress [path]",
	Short: "Print the JPEG recompression curve and the estimated previous quality",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if recompressFlags.Format != "text" && recompressFlags.Format != "yaml" {
			return faults.InvalidConfig("unknown output format %q", recompressFlags.Format)
		}

		src, err := openSource(args)
		if err != nil {
			return err
		}
		defer src.Close()

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		pages, err := selectPages(src, recompressFlags.Page)
		if err != nil {
			return err
		}

		type result struct {
			Source           string             `yaml:"source"`
			Page             int                `yaml:"page"`
			Curve            []recompress.Point `yaml:"curve"`
			EstimatedQuality int                `yaml:"estimated_quality"`
			Dip              float64            `yaml:"dip"`
		}
		var results []result

		for _, i := range pages {
			img, err := src.RenderPage(i, recompressFlags.DPI)
			if err != nil {
				return fmt.Errorf("render %s: %w", src.PageName(i), err)
			}
			curve, err := recompress.Curve(ctx, img, recompress.DefaultQualities)
			if err != nil {
				return fmt.Errorf("%s: %w", src.PageName(i), err)
			}
			q, dip := recompress.EstimateQuality(curve)
			results = append(results, result{src.PageName(i), i + 1, curve, q, dip})
		}

		if recompressFlags.Format == "yaml" {
			return writeYAML(results)
		}
		for _, r := range results {
			fmt.Printf("[*] %s (стр. %d)\n", infoColor(r.Source), r.Page)
			printCurve(r.Curve, r.EstimatedQuality, r.Dip)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recompressCmd)

	f := recompressCmd.Flags()
	f.IntVarP(&recompressFlags.Page, "page", "p", 0, "Номер страницы/изображения с 1 (0 - все)")
	f.IntVar(&recompressFlags.DPI, "dpi", 150, "DPI при растеризации PDF")
	f.StringVarP(&recompressFlags.Format, "format", "f", "text", "Формат вывода: text, yaml")
}
