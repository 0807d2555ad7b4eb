// Package format renders a report.FileReport for human consumption. JSON
// output (the machine-consumable form) needs no package of its own beyond
// encoding/json, since report.FileReport's struct tags already shape it;
// Human renders the same tree as an indented, terse plain-text outline in
// the teacher's direct style. SARIF and colorized terminal output are
// named in spec.md's Non-goals list of external collaborators and are not
// implemented here.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ruleweave/ruleweave/internal/report"
)

// JSON writes fr to w as indented JSON.
func JSON(w io.Writer, fr *report.FileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fr)
}

// Human writes fr to w as a short plain-text summary followed by an
// indented failure tree, one clause per line.
func Human(w io.Writer, fr *report.FileReport) error {
	if _, err := fmt.Fprintf(w, "status: %s\n", fr.Status); err != nil {
		return err
	}
	if err := writeList(w, "compliant", fr.Rules.Compliant); err != nil {
		return err
	}
	if err := writeList(w, "not_applicable", fr.Rules.NotApplicable); err != nil {
		return err
	}
	if err := writeList(w, "not_compliant", fr.Rules.NotCompliant); err != nil {
		return err
	}
	if len(fr.Failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "failures:"); err != nil {
		return err
	}
	for _, f := range fr.Failures {
		if err := writeClause(w, f, 1); err != nil {
			return err
		}
	}
	return nil
}

func writeList(w io.Writer, label string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", label, strings.Join(names, ", "))
	return err
}

func writeClause(w io.Writer, c *report.ClauseReport, depth int) error {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s", indent, clauseHeading(c))
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range c.Children {
		if err := writeClause(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func clauseHeading(c *report.ClauseReport) string {
	switch c.Kind {
	case report.KindClause:
		if c.Unary {
			return fmt.Sprintf("%s %s%s", c.From, c.Operator, messageSuffix(c.Message))
		}
		return fmt.Sprintf("%s %s %s%s", c.From, c.Operator, c.To, messageSuffix(c.Message))
	default:
		label := c.Label
		if label == "" {
			label = string(c.Kind)
		}
		return fmt.Sprintf("[%s] %s", c.Kind, label)
	}
}

func messageSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return "  << " + msg + " >>"
}
