package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sim-os/sim-os/lang"
	"github.com/sim-os/sim-os/sim"
)

var (
	// CLI flags for the run and serve commands
	logLevel   string // Log verbosity level
	policyName string // Scheduling policy tag (fcfs, rr)
	quantum    uint64 // Round Robin quantum in ticks
	cores      int    // Number of simulated cores
	seed       int64  // Seed for the scenario entropy source (0 = wall clock)
	maxTicks   uint64 // Safety bound on total simulated ticks
	outPath    string // Metrics report output path
	configPath string // Optional YAML config file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sim-os",
	Short: "Tick-driven multi-core CPU scheduler simulator",
}

// runCmd evaluates a scenario script and steps the engine to completion.
var runCmd = &cobra.Command{
	Use:   "run <file.sl>",
	Short: "Run a scenario to completion and report metrics",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := resolveConfig(cmd)

		engine, entropy := buildEngine(cfg)
		evaluateScenario(args[0], engine, entropy)

		recorder := &sim.Recorder{}
		for !engine.Complete() {
			if engine.Timer() >= cfg.MaxTicks {
				logrus.Fatalf("simulation exceeded %d ticks without completing", cfg.MaxTicks)
			}
			engine.Step()
			recorder.Observe(engine)
		}

		sim.PrintSummary(engine, recorder)

		if cfg.Out != "" {
			if err := recorder.Report(engine).WriteFile(cfg.Out); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Saved simulation result to %s", cfg.Out)
		}
	},
}

// resolveConfig merges the config file (if any) with CLI flags.
// A flag the user set explicitly wins over the file.
func resolveConfig(cmd *cobra.Command) sim.Config {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = policyName
	}
	if cmd.Flags().Changed("quantum") {
		cfg.Quantum = quantum
	}
	if cmd.Flags().Changed("cores") {
		cfg.Cores = cores
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = outPath
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

func buildEngine(cfg sim.Config) (*sim.Engine, *sim.Entropy) {
	policy, err := sim.NewPolicy(cfg.Policy, cfg.Quantum)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return sim.NewEngine(policy, cfg.Cores), sim.NewEntropy(cfg.Seed)
}

func evaluateScenario(path string, engine *sim.Engine, entropy *sim.Entropy) {
	source, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("unable to read scenario %s: %v", path, err)
	}
	if err := lang.Eval(string(source), engine, entropy); err != nil {
		logrus.Fatalf("scenario %s: %v", path, err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, serveCmd} {
		cmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
		cmd.Flags().StringVar(&policyName, "policy", "rr", "Scheduling policy (fcfs, rr)")
		cmd.Flags().Uint64Var(&quantum, "quantum", sim.DefaultQuantum, "Round Robin quantum in ticks")
		cmd.Flags().IntVar(&cores, "cores", sim.MaxCores, "Number of simulated cores")
		cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for scenario randomness (0 = nondeterministic)")
		cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (flags override)")
	}
	runCmd.Flags().Uint64Var(&maxTicks, "max-ticks", sim.DefaultConfig().MaxTicks, "Abort if the simulation runs longer than this many ticks")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write the metrics report to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
}
