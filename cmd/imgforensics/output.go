package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/imgforensics/internal/analyzer"
	"github.com/ivlev/imgforensics/internal/recompress"
)

type pageFinding struct {
	Source            string `yaml:"source"`
	Page              int    `yaml:"page"`
	*analyzer.Finding `yaml:"finding"`
}

func printFinding(f pageFinding) {
	fmt.Printf("[*] %s (стр. %d), детектор %s\n", infoColor(f.Source), f.Page, f.Detector)

	if len(f.Curve) > 0 {
		printCurve(f.Curve, f.EstimatedQuality, f.Dip)
	}

	rep := f.Report
	if rep == nil {
		return
	}

	fmt.Printf("    Сетка блоков: %d x %d, порог %s = %.4f\n",
		rep.Rows(), rep.Cols(), rep.Policy(), rep.ThresholdUsed())

	for row := 0; row < rep.Rows(); row++ {
		var sb strings.Builder
		sb.WriteString("    ")
		for col := 0; col < rep.Cols(); col++ {
			v := rep.At(row, col)
			cell := fmt.Sprintf("%6.3f", v)
			if v > rep.ThresholdUsed() {
				cell = alertColor(cell)
			}
			sb.WriteString(cell)
		}
		fmt.Println(sb.String())
	}

	if !f.Suspicious() {
		fmt.Printf("[+] Оценка %.4f: %s\n", rep.ForensicScore(), successColor("аномалий не найдено"))
		return
	}
	suspects := rep.Suspects()
	fmt.Printf("[!] Оценка %.4f: %s, подозрительных блоков: %d\n",
		rep.ForensicScore(), alertColor("возможное редактирование"), len(suspects))
	for _, c := range suspects {
		fmt.Printf("    блок (%d, %d): %.4f\n", c.Row, c.Col, c.Value)
	}
}

func printCurve(curve []recompress.Point, quality int, dip float64) {
	for _, p := range curve {
		mark := ""
		if p.Quality == quality {
			mark = warningColor(" <")
		}
		fmt.Printf("    q=%3d  diff=%.4f%s\n", p.Quality, p.Diff, mark)
	}
	if quality == 0 {
		fmt.Printf("[+] %s\n", successColor("следов повторного JPEG-сжатия не найдено"))
		return
	}
	fmt.Printf("[!] Вероятное прежнее качество JPEG: %d (провал %.1f%%)\n", quality, dip*100)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
