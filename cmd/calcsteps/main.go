package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/calcsteps/internal/config"
	"github.com/njchilds90/calcsteps/internal/logging"
	"github.com/njchilds90/calcsteps/service"
)

var (
	// Global flags
	configPath string
	verbose    bool
	modeFlag   string
	workers    int
	maxDepth   int
	addr       string

	// Per-command flags
	variable   string
	order      int
	lowerBound string
	upperBound string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "calcsteps",
	Short: "Step-by-step calculus narration",
	Long: `calcsteps differentiates, integrates and evaluates LaTeX expressions
and narrates derivatives as numbered steps.

Run "calcsteps serve" to answer newline-delimited JSON requests on stdin,
or "calcsteps http" to serve the same requests over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve newline-delimited JSON requests on stdin/stdout",
	Long: `Reads one JSON request per line from stdin and writes one JSON
response per line to stdout, in input order. The request type comes from
--mode unless a request carries its own "type" field.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve requests over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runHTTP,
}

var stepsCmd = &cobra.Command{
	Use:   "steps [latex]",
	Short: "Print the derivative steps of an expression",
	Example: `  calcsteps steps '\sin(x^2)'
  calcsteps steps 'x^3' --order 2`,
	Args: cobra.ExactArgs(1),
	RunE: runSteps,
}

var diffCmd = &cobra.Command{
	Use:   "diff [latex]",
	Short: "Print the derivative of an expression",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var integrateCmd = &cobra.Command{
	Use:   "integrate [latex]",
	Short: "Print an antiderivative or a definite integral",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntegrate,
}

var evalCmd = &cobra.Command{
	Use:   "eval [latex]",
	Short: "Evaluate a numeric expression",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

var matrixCmd = &cobra.Command{
	Use:     "matrix [expr]",
	Short:   "Evaluate a matrix expression",
	Example: `  calcsteps matrix 'Matrix([[1, 2], [3, 4]]).inv()'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runMatrix,
}

var parseCmd = &cobra.Command{
	Use:   "parse [latex]",
	Short: "Print the expression tree of a LaTeX expression as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write the effective configuration to a YAML file",
	Long: `Writes the configuration after the file, environment and flag
overrides have been applied. The output is a valid --config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runInitConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Default request type for serve")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent requests for serve")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Narration recursion depth")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "HTTP listen address")

	for _, c := range []*cobra.Command{stepsCmd, diffCmd, integrateCmd} {
		c.Flags().StringVar(&variable, "var", "x", "Variable of differentiation or integration")
	}
	stepsCmd.Flags().IntVar(&order, "order", 1, "Order of the derivative")
	integrateCmd.Flags().StringVar(&lowerBound, "lower", "", "Lower bound (LaTeX)")
	integrateCmd.Flags().StringVar(&upperBound, "upper", "", "Upper bound (LaTeX)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(integrateCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over the file and environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		c.Stream.Mode = modeFlag
	}
	if flags.Changed("workers") {
		c.Stream.Workers = workers
	}
	if flags.Changed("max-depth") {
		c.Steps.MaxDepth = maxDepth
	}
	if flags.Changed("addr") {
		c.HTTP.Addr = addr
	}
}

func newService(c *config.Config) *service.Service {
	return service.New(service.Config{
		MaxDepth:           c.Steps.MaxDepth,
		ChainDetection:     c.Steps.ChainDetection,
		MaxOrder:           c.Steps.MaxOrder,
		QuadratureFallback: c.Integral.QuadratureFallback,
	}, logger)
}
