package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	htm "github.com/htm-community/spatial-pooler"
	"github.com/htm-community/spatial-pooler/internal/logger"
	"github.com/htm-community/spatial-pooler/internal/metrics"
	"github.com/htm-community/spatial-pooler/utils"
)

var version = "0.1.0"

type runFlags struct {
	configPath   string
	records      int
	inputDensity float64
	learn        bool
	seed         int64
	logLevel     string
	metricsAddr  string
	hold         bool
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "spdemo",
		Short: "Run a spatial pooler over random binary inputs",
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spdemo v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	})

	root.AddCommand(newParamsCmd())
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newParamsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the default parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := htm.NewSpParams()
			var (
				data []byte
				err  error
			)
			switch format {
			case "yaml":
				data, err = yaml.Marshal(params)
			case "json":
				data, err = htm.MarshalSpParamsJSON(params)
			case "text":
				data = []byte(params.ToString())
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json or text")
	return cmd
}

func newRunCmd() *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Feed random inputs through a spatial pooler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, flags, cmd.Flags().Changed("seed"))
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "YAML parameter file")
	cmd.Flags().IntVar(&flags.records, "records", 1000, "number of random inputs")
	cmd.Flags().Float64Var(&flags.inputDensity, "input-density", 0.1, "fraction of active input bits")
	cmd.Flags().BoolVar(&flags.learn, "learn", true, "enable learning")
	cmd.Flags().Int64Var(&flags.seed, "seed", 1, "seed for the pooler and the input generator")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", envOr("SP_LOG_LEVEL", "info"), "log level")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", os.Getenv("SP_METRICS_ADDR"), "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&flags.hold, "hold", false, "keep serving metrics after the run until interrupted")
	return cmd
}

func run(ctx context.Context, flags runFlags, seedSet bool) error {
	logCfg := logger.DefaultConfig()
	logCfg.Level = flags.logLevel
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	params := htm.NewSpParams()
	if flags.configPath != "" {
		params, err = htm.LoadSpParams(flags.configPath)
		if err != nil {
			return err
		}
	}
	if seedSet || flags.configPath == "" {
		params.Seed = flags.seed
	}

	sp, err := htm.NewSpatialPooler(params, htm.WithLogger(log))
	if err != nil {
		return err
	}

	collector := metrics.NewCollector("spdemo")
	var srv *http.Server
	if flags.metricsAddr != "" {
		srv = &http.Server{Addr: flags.metricsAddr, Handler: collector.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", zap.String("addr", flags.metricsAddr))
	}

	rnd := rand.New(rand.NewSource(flags.seed))
	input := make([]bool, sp.NumInputs())
	active := make([]bool, sp.NumColumns())
	totalActive := 0
	start := time.Now()

	for i := 0; i < flags.records; i++ {
		if ctx.Err() != nil {
			log.Warn("run interrupted", zap.Int("records", i))
			break
		}
		for j := range input {
			input[j] = rnd.Float64() < flags.inputDensity
		}

		computeStart := time.Now()
		sp.Compute(input, flags.learn, active)
		numActive := utils.CountTrue(active)
		collector.ObserveCompute(flags.learn, numActive, time.Since(computeStart))
		collector.ObserveState(sp.InhibitionRadius(), sp.BoostFactors())
		totalActive += numActive
	}

	meanActive := 0.0
	if sp.IterationNum > 0 {
		meanActive = float64(totalActive) / float64(sp.IterationNum)
	}
	log.Info("run finished",
		zap.Int("iterations", sp.IterationNum),
		zap.Int("learnIterations", sp.IterationLearnNum),
		zap.Float64("meanActiveColumns", meanActive),
		zap.Int("inhibitionRadius", sp.InhibitionRadius()),
		zap.Duration("elapsed", time.Since(start)))

	if srv != nil && flags.hold {
		log.Info("holding metrics server, interrupt to exit")
		<-ctx.Done()
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
