package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "SPSCBENCH"

// app carries what every subcommand shares.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "spscbench",
		Short:        "Benchmark the linked SPSC queue",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			log, err := newLogger(a.v.GetBool("debug"))
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().IntP("n", "n", 10_000_000, "number of values")
	root.PersistentFlags().Bool("debug", false, "development logging at debug level")

	root.AddCommand(
		a.pingPongCmd(),
		a.pipelineCmd(),
		a.burstCmd(),
		a.hotLoopCmd(),
	)
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopmentConfig().Build()
	}
	return zap.NewProduction()
}

func perOp(d time.Duration, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(d.Nanoseconds()) / float64(n)
}

func printSpeedup(w io.Writer, baseName string, basePerOp float64, otherName string, otherPerOp float64) {
	if otherPerOp < basePerOp {
		fmt.Fprintf(w, "\n  Speedup:  %.2fx (%s faster)\n", basePerOp/otherPerOp, otherName)
	} else {
		fmt.Fprintf(w, "\n  Speedup:  %.2fx (%s faster)\n", otherPerOp/basePerOp, baseName)
	}
}

const rule = "─────────────────────────────────────────────────"
