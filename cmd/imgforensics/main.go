package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ivlev/imgforensics/internal/faults"
)

var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	alertColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

var rootFlags struct {
	Verbose bool
	Timeout time.Duration
}

var rootCmd = &cobra.Command{
	Use:           "imgforensics",
	Short:         "Block-wise histogram forensics for images",
	Long:          `Splits an image into blocks, compares every block's histogram with its neighborhood and reports regions whose statistics do not fit the rest of the image.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.Verbose, "verbose", "v", false, "Подробный лог (фазы и тайминги)")
	rootCmd.PersistentFlags().DurationVar(&rootFlags.Timeout, "timeout", 0, "Прервать анализ через указанное время (0 - без ограничения)")
}

func main() {
	level := zerolog.InfoLevel
	// Флаги ещё не разобраны: смотрим argv напрямую
	for _, a := range os.Args[1:] {
		if a == "-v" || a == "--verbose" {
			level = zerolog.DebugLevel
		}
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	ctx := logger.WithContext(context.Background())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg(describe(err))
		os.Exit(exitCode(err))
	}
}

// withTimeout applies --timeout to the command context.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rootFlags.Timeout > 0 {
		return context.WithTimeout(ctx, rootFlags.Timeout)
	}
	return context.WithCancel(ctx)
}

func describe(err error) string {
	switch {
	case errors.Is(err, faults.ErrInvalidConfig):
		return "[-] Неверная конфигурация"
	case errors.Is(err, faults.ErrMalformedInput):
		return "[-] Некорректное изображение"
	case errors.Is(err, faults.ErrCancelled):
		return "[-] Анализ прерван"
	default:
		return "[-] Ошибка"
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, faults.ErrInvalidConfig):
		return 2
	case errors.Is(err, faults.ErrMalformedInput):
		return 3
	case errors.Is(err, faults.ErrCancelled):
		return 4
	default:
		return 1
	}
}
