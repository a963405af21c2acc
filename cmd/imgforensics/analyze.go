package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ivlev/imgforensics/internal/analyzer"
	"github.com/ivlev/imgforensics/internal/config"
	"github.com/ivlev/imgforensics/internal/engine"
	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/report"
	"github.com/ivlev/imgforensics/internal/source"
	"github.com/ivlev/imgforensics/internal/system"
)

var analyzeFlags struct {
	Config    string
	BlockSize int
	Bins      int
	Radius    int
	Threshold string
	Workers   int
	Detector  string
	Page      int
	DPI       int
	Format    string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Build the block anomaly map of an image",
	Long: `Analyzes an image file, every image in a directory or every page of a PDF.
Without a path the most recent image in input/ is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if analyzeFlags.Format != "text" && analyzeFlags.Format != "yaml" {
			return faults.InvalidConfig("unknown output format %q", analyzeFlags.Format)
		}

		detector, err := analyzer.NewDetector(analyzeFlags.Detector, cfg)
		if err != nil {
			return err
		}

		src, err := openSource(args)
		if err != nil {
			return err
		}
		defer src.Close()

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		pages, err := selectPages(src, analyzeFlags.Page)
		if err != nil {
			return err
		}

		var findings []pageFinding
		for _, i := range pages {
			checkMemory(ctx, src, i, cfg)

			img, err := src.RenderPage(i, analyzeFlags.DPI)
			if err != nil {
				return fmt.Errorf("render %s: %w", src.PageName(i), err)
			}
			finding, err := detector.Detect(ctx, img)
			if err != nil {
				return fmt.Errorf("%s: %w", src.PageName(i), err)
			}
			findings = append(findings, pageFinding{Source: src.PageName(i), Page: i + 1, Finding: finding})
		}

		if analyzeFlags.Format == "yaml" {
			return writeYAML(findings)
		}
		for _, f := range findings {
			printFinding(f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	d := config.Default()
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.Config, "config", "c", "", "YAML-файл конфигурации")
	f.IntVarP(&analyzeFlags.BlockSize, "block-size", "b", d.BlockSize, "Размер блока в пикселях")
	f.IntVar(&analyzeFlags.Bins, "bins", d.BinCount, "Число корзин гистограммы")
	f.IntVarP(&analyzeFlags.Radius, "radius", "r", d.NeighborhoodRadius, "Радиус окрестности в блоках")
	f.StringVarP(&analyzeFlags.Threshold, "threshold", "t", d.Threshold.String(), "Порог: fixed:<v> или mean+k:<k>")
	f.IntVarP(&analyzeFlags.Workers, "workers", "w", d.Workers, "Потоки (0 - по числу CPU)")
	f.StringVarP(&analyzeFlags.Detector, "detector", "d", "blocks", "Детектор: blocks, recompress, ela")
	f.IntVarP(&analyzeFlags.Page, "page", "p", 0, "Номер страницы/изображения с 1 (0 - все)")
	f.IntVar(&analyzeFlags.DPI, "dpi", 150, "DPI при растеризации PDF")
	f.StringVarP(&analyzeFlags.Format, "format", "f", "text", "Формат вывода: text, yaml")
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if analyzeFlags.Config != "" {
		var err error
		if cfg, err = config.Load(analyzeFlags.Config); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("block-size") {
		cfg.BlockSize = analyzeFlags.BlockSize
	}
	if f.Changed("bins") {
		cfg.BinCount = analyzeFlags.Bins
	}
	if f.Changed("radius") {
		cfg.NeighborhoodRadius = analyzeFlags.Radius
	}
	if f.Changed("workers") {
		cfg.Workers = analyzeFlags.Workers
	}
	if f.Changed("threshold") {
		policy, err := report.ParsePolicy(analyzeFlags.Threshold)
		if err != nil {
			return cfg, err
		}
		cfg.Threshold = policy
	}
	return cfg, cfg.Validate()
}

func openSource(args []string) (source.Source, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		latest, err := system.FindLatestImage("input")
		if err != nil {
			return nil, fmt.Errorf("%w. Положите изображение в input/", err)
		}
		path = latest
		fmt.Printf("[*] Выбран файл: %s\n", infoColor(path))
	}

	src, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации источника: %w", err)
	}
	if src.PageCount() == 0 {
		src.Close()
		return nil, fmt.Errorf("в источнике нет страниц или изображений")
	}
	return src, nil
}

func selectPages(src source.Source, page int) ([]int, error) {
	n := src.PageCount()
	if page == 0 {
		pages := make([]int, n)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}
	if page < 0 || page > n {
		return nil, faults.InvalidConfig("page %d out of range [1, %d]", page, n)
	}
	return []int{page - 1}, nil
}

// checkMemory warns when the analysis of a page may not fit in free memory.
func checkMemory(ctx context.Context, src source.Source, index int, cfg config.Config) {
	w, h, err := src.PageSize(index, analyzeFlags.DPI)
	if err != nil {
		return
	}
	need := engine.EstimateMemory(w, h, 3, cfg)
	available, fits, err := system.MemoryHeadroom(ctx, need)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("memory check skipped")
		return
	}
	if !fits {
		fmt.Printf("[!] %s: %dx%d, анализу нужно ~%d МБ, свободно %d МБ\n",
			warningColor(src.PageName(index)), w, h, need>>20, available>>20)
	}
}
