package main

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/report"
)

type fakeSource struct{ pages int }

func (f fakeSource) PageCount() int                        { return f.pages }
func (f fakeSource) PageName(i int) string                 { return fmt.Sprintf("page-%d", i) }
func (f fakeSource) PageSize(i, dpi int) (int, int, error) { return 8, 8, nil }
func (f fakeSource) RenderPage(i, dpi int) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 8, 8)), nil
}
func (f fakeSource) Close() error { return nil }

func TestSelectPages(t *testing.T) {
	src := fakeSource{pages: 3}

	all, err := selectPages(src, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, all)

	one, err := selectPages(src, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, one)

	_, err = selectPages(src, 4)
	assert.ErrorIs(t, err, faults.ErrInvalidConfig)
}

func TestResolveConfig(t *testing.T) {
	require.NoError(t, analyzeCmd.Flags().Set("bins", "64"))
	require.NoError(t, analyzeCmd.Flags().Set("threshold", "fixed:0.25"))

	cfg, err := resolveConfig(analyzeCmd)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.BinCount)
	assert.Equal(t, 8, cfg.BlockSize)
	assert.Equal(t, report.FixedThreshold(0.25), cfg.Threshold)

	require.NoError(t, analyzeCmd.Flags().Set("threshold", "otsu"))
	_, err = resolveConfig(analyzeCmd)
	assert.ErrorIs(t, err, faults.ErrInvalidConfig)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{faults.InvalidConfig("x"), 2},
		{fmt.Errorf("page: %w", faults.MalformedInput("y")), 3},
		{faults.Cancelled(context.DeadlineExceeded), 4},
		{fmt.Errorf("other"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), tt.err.Error())
	}
}
