package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleResult struct {
	Score     float64  `json:"overall_score"`
	Match     bool     `json:"match"`
	Rationale string   `json:"rationale"`
	Gaps      []string `json:"gaps"`
}

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sampleResult
	}{
		{
			name:  "plain",
			input: `{"overall_score": 81, "match": true, "rationale": "solid", "gaps": ["k8s"]}`,
			want:  sampleResult{Score: 81, Match: true, Rationale: "solid", Gaps: []string{"k8s"}},
		},
		{
			name:  "prose and fence",
			input: "Here is my assessment:\n```json\n{\"overall_score\": 70, \"rationale\": \"ok\"}\n```\nThanks!",
			want:  sampleResult{Score: 70, Rationale: "ok"},
		},
		{
			name:  "smart quotes",
			input: "{“overall_score”: 65, “rationale”: “fine”}",
			want:  sampleResult{Score: 65, Rationale: "fine"},
		},
		{
			name:  "trailing commas",
			input: `{"overall_score": 90, "gaps": ["a", "b",], }`,
			want:  sampleResult{Score: 90, Gaps: []string{"a", "b"}},
		},
		{
			name:  "raw newline in string",
			input: "{\"overall_score\": 55, \"rationale\": \"line one\nline two\tend\"}",
			want:  sampleResult{Score: 55, Rationale: "line one\nline two\tend"},
		},
		{
			name:  "braces inside strings",
			input: `noise {"rationale": "uses {templates}", "overall_score": 60} trailing {junk}`,
			want:  sampleResult{Score: 60, Rationale: "uses {templates}"},
		},
		{
			name:  "stringly typed",
			input: `{"overall_score": "88", "match": "true", "gaps": "none"}`,
			want:  sampleResult{Score: 88, Match: true, Gaps: []string{"none"}},
		},
		{
			name:  "bom",
			input: "\ufeff{\"overall_score\": 1}",
			want:  sampleResult{Score: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sampleResult
			require.NoError(t, ParseJSONObject(tt.input, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONObjectFailures(t *testing.T) {
	for _, input := range []string{"", "no json here", `{"overall_score": }`, "[1, 2, 3]"} {
		var got sampleResult
		err := ParseJSONObject(input, &got)
		assert.ErrorIs(t, err, ErrUnparsable, "input %q", input)
	}
}

func TestRepairJSONLeavesStringCommas(t *testing.T) {
	assert.Equal(t, `{"a": "x, }"}`, repairJSON(`{"a": "x, }",}`))
}
