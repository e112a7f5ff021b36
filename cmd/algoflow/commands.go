package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/algoflow/judge/catalog"
	"github.com/algoflow/judge/cmd/algoflow-server/version"
	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/loader"
	"github.com/algoflow/judge/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errNotAllPassed = errors.New("not all tests passed")

type options struct {
	catalogPath string
	debug       bool

	entry   string
	timeout time.Duration
	json    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "algoflow",
		Short:         "Practice algorithms against graded problems",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "problem catalog yaml (built-in catalog by default)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "print debug logs to stderr")

	root.AddCommand(
		newAlgosCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newRunCmd(opts),
	)
	return root
}

func (o *options) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath != "" {
		return catalog.LoadFile(o.catalogPath)
	}
	return catalog.Default()
}

func (o *options) logger() *zap.Logger {
	if !o.debug {
		return zap.NewNop()
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newAlgosCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "algos",
		Short: "List all available algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			algos := c.Algorithms()
			if len(algos) == 0 {
				p.line("No algorithms available.")
				return nil
			}
			p.title("Available algorithms:")
			for _, a := range algos {
				p.line("- " + a)
			}
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <algorithm>",
		Short: "List problems for an algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			ps := c.List(args[0])
			if len(ps) == 0 {
				p.line("No problems found for " + args[0])
				return nil
			}
			p.title("Problems for " + args[0] + ":")
			for _, pb := range ps {
				p.line(fmt.Sprintf("%d: %s", pb.ID, pb.Title))
			}
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <algorithm> <problem-id>",
		Short: "Show details of a problem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			pb, ok := c.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("problem %s not found for %s", args[1], args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), catalog.Format(pb))
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <algorithm> <problem-id> <solution-file>",
		Short: "Run your solution against test cases",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			pb, ok := c.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("problem %s not found for %s", args[1], args[0])
			}

			logger := opts.logger()
			defer logger.Sync()
			g := grader.New(grader.Config{
				Validator:   validator.New(c.Techniques(), logger),
				Loader:      loader.New(loader.Config{Logger: logger}),
				CaseTimeout: opts.timeout,
				Logger:      logger,
			})

			p := newPrinter(cmd.OutOrStdout())
			var progress grader.Progress
			if !opts.json {
				progress = p.result
			}
			results := g.GradeSubmission(context.Background(), grader.Submission{
				Path:       args[2],
				EntryPoint: opts.entry,
			}, pb, progress)

			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else if grader.Rejected(results) {
				p.result(results[0])
			}

			passed, total := grader.Summary(results)
			if !opts.json {
				p.summary(passed, total)
			}
			if total == 0 || passed != total {
				return errNotAllPassed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.entry, "entry", "", "entry point name (defaults to the problem entry point)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Second, "wall clock limit of a single test case, 0 disables")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result records as JSON")
	return cmd
}
