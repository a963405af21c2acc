// Package report turns per-block anomaly scores into the analysis result:
// a smoothed anomaly map, the forensic score and the threshold in effect.
package report

import (
	"slices"

	"github.com/ivlev/imgforensics/internal/faults"
)

// Cell addresses one block of the anomaly map.
type Cell struct {
	Row   int     `yaml:"row"`
	Col   int     `yaml:"col"`
	Value float64 `yaml:"value"`
}

// Report is the read-only result of one analysis.
type Report struct {
	rows, cols    int
	anomaly       []float64
	forensicScore float64
	threshold     float64
	policy        ThresholdPolicy
}

// Aggregate places scores (row-major, rows×cols) on the grid, smooths them
// with a 3×3 mean, takes the maximum as the forensic score and resolves the
// threshold. It does not judge the image; Suspects lists the blocks above
// the threshold.
func Aggregate(scores []float64, rows, cols int, policy ThresholdPolicy) (*Report, error) {
	if rows <= 0 || cols <= 0 {
		return nil, faults.InvalidConfig("grid %dx%d", rows, cols)
	}
	if len(scores) != rows*cols {
		return nil, faults.MalformedInput("%d scores for a %dx%d grid", len(scores), rows, cols)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	smoothed := Smooth(scores, rows, cols)

	return &Report{
		rows:          rows,
		cols:          cols,
		anomaly:       smoothed,
		forensicScore: slices.Max(smoothed),
		threshold:     policy.Threshold(smoothed),
		policy:        policy,
	}, nil
}

// Smooth replaces every value by the mean of its 3×3 neighborhood. Cells on
// the border average over the neighbors that exist.
func Smooth(values []float64, rows, cols int) []float64 {
	out := make([]float64, len(values))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var sum float64
			n := 0
			for rr := max(0, r-1); rr <= min(rows-1, r+1); rr++ {
				for cc := max(0, c-1); cc <= min(cols-1, c+1); cc++ {
					sum += values[rr*cols+cc]
					n++
				}
			}
			out[r*cols+c] = sum / float64(n)
		}
	}
	return out
}

func (r *Report) Rows() int { return r.rows }
func (r *Report) Cols() int { return r.cols }

// At returns the smoothed anomaly value of block (row, col).
func (r *Report) At(row, col int) float64 { return r.anomaly[row*r.cols+col] }

// AnomalyMap returns a copy of the smoothed map as rows of values.
func (r *Report) AnomalyMap() [][]float64 {
	out := make([][]float64, r.rows)
	for row := range out {
		out[row] = slices.Clone(r.anomaly[row*r.cols : (row+1)*r.cols])
	}
	return out
}

func (r *Report) ForensicScore() float64  { return r.forensicScore }
func (r *Report) ThresholdUsed() float64  { return r.threshold }
func (r *Report) Policy() ThresholdPolicy { return r.policy }

// Exceeds reports whether the forensic score is above the threshold.
func (r *Report) Exceeds() bool { return r.forensicScore > r.threshold }

// Suspects returns the blocks whose smoothed value exceeds the threshold,
// in row-major order.
func (r *Report) Suspects() []Cell {
	var out []Cell
	for i, v := range r.anomaly {
		if v > r.threshold {
			out = append(out, Cell{Row: i / r.cols, Col: i % r.cols, Value: v})
		}
	}
	return out
}

type yamlReport struct {
	Rows          int             `yaml:"rows"`
	Cols          int             `yaml:"cols"`
	ForensicScore float64         `yaml:"forensic_score"`
	ThresholdUsed float64         `yaml:"threshold_used"`
	Policy        ThresholdPolicy `yaml:"threshold_policy"`
	Suspects      []Cell          `yaml:"suspects"`
	AnomalyMap    [][]float64     `yaml:"anomaly_map,flow"`
}

// MarshalYAML implements yaml.Marshaler for printing reports.
func (r *Report) MarshalYAML() (interface{}, error) {
	return yamlReport{
		Rows:          r.rows,
		Cols:          r.cols,
		ForensicScore: r.forensicScore,
		ThresholdUsed: r.threshold,
		Policy:        r.policy,
		Suspects:      r.Suspects(),
		AnomalyMap:    r.AnomalyMap(),
	}, nil
}
