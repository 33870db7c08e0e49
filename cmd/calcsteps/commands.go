package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/calcsteps/internal/httpapi"
	"github.com/njchilds90/calcsteps/internal/stream"
	"github.com/njchilds90/calcsteps/latex"
	"github.com/njchilds90/calcsteps/service"
	"github.com/njchilds90/calcsteps/steps"
	"github.com/njchilds90/calcsteps/symbolic"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	mode, err := service.ParseMode(cfg.Stream.Mode)
	if err != nil {
		return err
	}
	svc := newService(cfg)
	d := service.NewDispatcher(svc, logger.Named("dispatch"))
	srv := stream.NewServer(d, stream.Options{
		Mode:         mode,
		Workers:      cfg.Stream.Workers,
		MaxLineBytes: cfg.Stream.MaxLineBytes,
	}, logger.Named("stream"))

	logger.Info("serving stream",
		zap.String("mode", string(mode)),
		zap.Int("workers", cfg.Stream.Workers),
		zap.Int("max_depth", svc.MaxDepth()))
	return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

func runHTTP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	d := service.NewDispatcher(newService(cfg), logger.Named("dispatch"))
	srv := httpapi.NewServer(d, httpapi.Options{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}, logger.Named("http"))
	return srv.ListenAndServe(ctx)
}

func runSteps(cmd *cobra.Command, args []string) error {
	resp, err := newService(cfg).DerivativeSteps(service.StepsRequest{
		Expression:        args[0],
		Variable:          variable,
		OrderOfDerivative: service.Order(order),
	})
	if err != nil {
		return cliError(err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Expression: %s\n\n", resp.Simplified)
	printSteps(out, resp.Steps, 0)
	fmt.Fprintf(out, "\nResult: %s\n", resp.Result)
	return nil
}

func printSteps(w io.Writer, list []steps.Step, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, s := range list {
		fmt.Fprintf(w, "%s%d. %s\n", indent, s.Number, s.Text)
		if s.Math != "" {
			fmt.Fprintf(w, "%s   %s\n", indent, s.Math)
		}
		printSteps(w, s.Substeps, depth+1)
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	resp, err := newService(cfg).Derivative(service.DerivativeRequest{
		Expression: args[0],
		Variable:   variable,
	})
	if err != nil {
		return cliError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
	return nil
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	req := service.IntegralRequest{Expression: args[0], Variable: variable}
	if lowerBound != "" || upperBound != "" {
		req.Bound = &service.Bound{
			LowerBound: service.Literal(lowerBound),
			UpperBound: service.Literal(upperBound),
		}
	}
	resp, err := newService(cfg).Integral(req)
	if err != nil {
		return cliError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	resp, err := newService(cfg).Basic(service.BasicRequest{Expression: args[0]})
	if err != nil {
		return cliError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %g\n", resp.Result.Exact, resp.Result.Decimal)
	return nil
}

func runMatrix(cmd *cobra.Command, args []string) error {
	resp, err := newService(cfg).Matrix(service.MatrixRequest{Expression: args[0]})
	if err != nil {
		return cliError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	e, err := latex.Parse(args[0])
	if err != nil {
		return err
	}
	out, err := symbolic.ToJSON(e.Simplify())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if err := cfg.Save(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}

// cliError drops the service framing; a terminal user only needs the
// message.
func cliError(err error) error {
	return fmt.Errorf("%s", service.ErrorMessage(err))
}
