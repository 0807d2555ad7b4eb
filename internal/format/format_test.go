package format_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/format"
	"github.com/ruleweave/ruleweave/internal/report"
)

func sampleReport() *report.FileReport {
	return &report.FileReport{
		Status: "FAIL",
		Rules: report.RuleSet{
			Compliant:    []string{"a"},
			NotCompliant: []string{"b"},
		},
		Failures: []*report.ClauseReport{
			{
				Kind:  report.KindRule,
				Label: "b",
				Children: []*report.ClauseReport{
					{
						Kind:     report.KindClause,
						Operator: "==",
						From:     "/Resources/x/Type",
						To:       "<literal>",
						Message:  "wrong type",
					},
				},
			},
		},
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, format.JSON(&buf, sampleReport()))

	var decoded report.FileReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "FAIL", decoded.Status)
	assert.Equal(t, []string{"b"}, decoded.Rules.NotCompliant)
}

func TestHuman_IncludesStatusAndFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, format.Human(&buf, sampleReport()))

	out := buf.String()
	assert.True(t, strings.Contains(out, "status: FAIL"))
	assert.True(t, strings.Contains(out, "not_compliant: b"))
	assert.True(t, strings.Contains(out, "/Resources/x/Type == <literal>"))
	assert.True(t, strings.Contains(out, "wrong type"))
}

func TestHuman_NoFailuresOmitsSection(t *testing.T) {
	var buf bytes.Buffer
	fr := &report.FileReport{Status: "PASS", Rules: report.RuleSet{Compliant: []string{"a"}}}
	require.NoError(t, format.Human(&buf, fr))

	out := buf.String()
	assert.False(t, strings.Contains(out, "failures:"))
}
