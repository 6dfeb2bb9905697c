package batch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/lrcalc/internal/batch"
	"github.com/karupanerura/lrcalc/internal/expression"
	"github.com/karupanerura/lrcalc/internal/types"
)

func ptr[T any](v T) *T {
	return &v
}

func TestParseBatchYAML(t *testing.T) {
	t.Parallel()

	b, err := batch.ParseBatchYAML(strings.NewReader(`
cases:
  - "2+3*4"
  - expression: "(2+3)*4"
    expect: 20
  - expression: "5/0"
    expect_error: DivisionByZero
`))
	if err != nil {
		t.Fatal(err)
	}

	expected := batch.Batch{
		{Expression: "2+3*4"},
		{Expression: "(2+3)*4", Expect: ptr("20")},
		{Expression: "5/0", ExpectError: "DivisionByZero"},
	}
	if diff := cmp.Diff(expected, b); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParseBatchJSON(t *testing.T) {
	t.Parallel()

	b, err := batch.ParseBatchJSON(strings.NewReader(`["1+1", {"expression": "7/2", "expect": "3.5"}]`))
	if err != nil {
		t.Fatal(err)
	}

	expected := batch.Batch{
		{Expression: "1+1"},
		{Expression: "7/2", Expect: ptr("3.5")},
	}
	if diff := cmp.Diff(expected, b); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParseBatchError(t *testing.T) {
	t.Parallel()

	for _, source := range []string{
		`"1+1"`,
		`{"items": []}`,
		`{"cases": "1+1"}`,
		`[1]`,
		`[{"expect": "1"}]`,
		`[{"expression": "1", "unknown": true}]`,
		`[{"expression": "1", "expect": "1", "expect_error": "Overflow"}]`,
		`[`,
		`["1+1"] ["2+2"]`,
	} {
		source := source
		t.Run(source, func(t *testing.T) {
			t.Parallel()

			if _, err := batch.ParseBatchJSON(strings.NewReader(source)); err == nil {
				t.Error("should be error")
			} else {
				t.Logf("expected error: %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"cases.yaml":  "- 1+1\n- expression: 2*3\n  expect: 6\n",
		"cases.yml":   "cases:\n  - 1+1\n",
		"cases.json":  `["1+1"]`,
		"empty.yaml":  "\n",
		"broken.json": `[`,
		"cases.txt":   "1+1",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, tt := range []struct {
		name  string
		cases int
		fail  bool
	}{
		{name: "cases.yaml", cases: 2},
		{name: "cases.yml", cases: 1},
		{name: "cases.json", cases: 1},
		{name: "empty.yaml", cases: 0},
		{name: "broken.json", fail: true},
		{name: "cases.txt", fail: true},
		{name: "missing.json", fail: true},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := batch.LoadFile(filepath.Join(dir, tt.name))
			if tt.fail {
				if err == nil {
					t.Error("should be error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(b) != tt.cases {
				t.Errorf("expect %d cases but got %d", tt.cases, len(b))
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	b := batch.Batch{
		{Expression: "2+3*4"},
		{Expression: "(2+3)*4", Expect: ptr("20")},
		{Expression: "7/2", Expect: ptr("3.50")},
		{Expression: "1+1", Expect: ptr("3")},
		{Expression: "5/0", ExpectError: "DivisionByZero"},
		{Expression: "(1+2", ExpectError: "DivisionByZero"},
		{Expression: "2+x"},
		{Expression: "1", ExpectError: "Overflow"},
	}

	results := b.Run(nil)
	if len(results) != len(b) {
		t.Fatalf("expect %d results but got %d", len(b), len(results))
	}

	var ok []bool
	for i, r := range results {
		if r.Expression != b[i].Expression {
			t.Errorf("result %d is out of order: %q", i, r.Expression)
		}
		ok = append(ok, r.OK)
	}
	if diff := cmp.Diff([]bool{true, true, true, false, true, false, false, false}, ok); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(expression.Int(20), *results[0].Result); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if tag, _ := types.TagOf(results[6].Err()); tag != types.UnrecognizedSymbolTag {
		t.Errorf("unexpected error: %v", results[6].Err())
	}
	if results[6].Error == nil {
		t.Error("error exception should be set")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	results := batch.Batch{
		{Expression: "1+1", Expect: ptr("2")},
		{Expression: "1+1", Expect: ptr("3")},
		{Expression: "(", ExpectError: "UnbalancedGroups"},
		{Expression: "1/0"},
	}.Run(nil)

	expected := batch.Summary{
		Total:    4,
		Passed:   2,
		Failed:   2,
		Failures: []string{"1+1", "1/0"},
	}
	if diff := cmp.Diff(expected, batch.Summarize(results)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRunWithCustomEval(t *testing.T) {
	t.Parallel()

	var tracer expression.Tracer // debug disabled
	results := batch.Batch{{Expression: "10-2-3", Expect: ptr("5")}}.Run(tracer.Eval)
	if !results[0].OK {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestRunLargeIntegerExpectation(t *testing.T) {
	t.Parallel()

	results := batch.Batch{
		{Expression: "9223372036854775806+1", Expect: ptr("9223372036854775807")},
		{Expression: "9223372036854775806+1", Expect: ptr("9223372036854775806")},
		{Expression: "9007199254740993*1", Expect: ptr("9007199254740992")},
		{Expression: "4*5", Expect: ptr("20.0")},
	}.Run(nil)

	var ok []bool
	for _, r := range results {
		ok = append(ok, r.OK)
	}
	if diff := cmp.Diff([]bool{true, false, false, true}, ok); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
