package main

import (
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/format"
	"github.com/ruleweave/ruleweave/internal/ingest"
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/logging"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/record"
	"github.com/ruleweave/ruleweave/internal/report"
	"github.com/ruleweave/ruleweave/internal/telemetry"
	"github.com/ruleweave/ruleweave/pkg/errutil"
)

// evaluateConfig holds configuration for the evaluate command.
type evaluateConfig struct {
	rulesFile  string
	rulesDir   string
	document   string
	outputJSON bool
	failOnFail bool
}

// Validate checks that the configuration is valid.
func (cfg *evaluateConfig) Validate() error {
	if cfg.rulesFile == "" && cfg.rulesDir == "" {
		return oops.Code("CONFIG_INVALID").Errorf("one of --rules or --rules-dir is required")
	}
	if cfg.document == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--document is required")
	}
	return nil
}

// newEvaluateCmd creates the evaluate subcommand with all flags configured.
func newEvaluateCmd() *cobra.Command {
	cfg := &evaluateConfig{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a document against a rules file or directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.rulesFile, "rules", "", "path to a single rules file")
	cmd.Flags().StringVar(&cfg.rulesDir, "rules-dir", "", "directory to walk for rules files (.guard, .ruleweave)")
	cmd.Flags().StringVar(&cfg.document, "document", "", "path to the document to evaluate (JSON or YAML)")
	cmd.Flags().BoolVar(&cfg.outputJSON, "json", false, "render the report as JSON instead of plain text")
	cmd.Flags().BoolVar(&cfg.failOnFail, "fail-on-noncompliant", true, "exit with a non-zero status when the file-level result is FAIL")

	return cmd
}

func runEvaluate(cmd *cobra.Command, cfg *evaluateConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup("ruleweave", version, logFormat, os.Stderr)

	sources, err := loadRuleSources(cfg)
	if err != nil {
		errutil.LogError(logger, "failed to load rules", err)
		return err
	}

	doc, err := ingest.LoadDocument(cfg.document)
	if err != nil {
		errutil.LogError(logger, "failed to load document", err)
		return err
	}
	root := pathvalue.Root(doc.Value)

	fr, overall, err := evaluateAll(sources, root)
	if err != nil {
		errutil.LogError(logger, "evaluation failed", err)
		return err
	}

	out := cmd.OutOrStdout()
	var renderErr error
	if cfg.outputJSON {
		renderErr = format.JSON(out, fr)
	} else {
		renderErr = format.Human(out, fr)
	}
	if renderErr != nil {
		return renderErr
	}

	if cfg.failOnFail && overall == eval.Fail {
		cmd.SilenceUsage = true
		exitWithError(oops.Code("NOT_COMPLIANT").Errorf("document failed one or more rules"))
	}
	return nil
}

func loadRuleSources(cfg *evaluateConfig) ([]ingest.RuleSource, error) {
	if cfg.rulesFile != "" {
		src, err := ingest.LoadRuleFile(cfg.rulesFile)
		if err != nil {
			return nil, err
		}
		return []ingest.RuleSource{src}, nil
	}
	sources, err := ingest.WalkRuleDir(cfg.rulesDir, ingest.DefaultRuleExtensions...)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ingest.ErrNoRulesFound
	}
	return sources, nil
}

// evaluateAll runs every rule source against root and merges their reports
// into one FileReport. Each rules file is its own evaluation per spec §6.3
// (one invocation = one rules-text buffer); running several over the same
// document (the --rules-dir case) is a thin fan-out this CLI performs,
// not a core concept.
func evaluateAll(sources []ingest.RuleSource, root pathvalue.PathValue) (*report.FileReport, eval.Status, error) {
	merged := &report.FileReport{Status: eval.Pass.String()}
	overall := eval.Pass

	for _, src := range sources {
		file, err := lang.Parse(src.Filename, src.Text)
		if err != nil {
			return nil, eval.Fail, err
		}

		rec := record.New()
		start := time.Now()
		result := eval.Evaluate(file, root, rec)
		telemetry.RecordFileEvaluation(time.Since(start), result.Status)
		for _, r := range result.Rules {
			telemetry.RecordRuleEvaluation(r.Status)
		}

		fr := report.Flatten(result, rec.Root())
		merged.Rules.Compliant = append(merged.Rules.Compliant, fr.Rules.Compliant...)
		merged.Rules.NotApplicable = append(merged.Rules.NotApplicable, fr.Rules.NotApplicable...)
		merged.Rules.NotCompliant = append(merged.Rules.NotCompliant, fr.Rules.NotCompliant...)
		merged.Failures = append(merged.Failures, fr.Failures...)

		if result.Status == eval.Fail {
			overall = eval.Fail
		}
	}

	merged.Status = overall.String()
	return merged, overall, nil
}
