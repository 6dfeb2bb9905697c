package batch

import (
	"errors"
	"strconv"

	"github.com/karupanerura/lrcalc/internal/expression"
	"github.com/karupanerura/lrcalc/internal/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type EvalFunc func(source string) (expression.Number, error)

type Result struct {
	Case
	Result *expression.Number `json:"result,omitempty"`
	Error  any                `json:"error,omitempty"`
	OK     bool               `json:"ok"`

	err error
}

func (r *Result) Err() error {
	return r.err
}

// Run evaluates every case concurrently. Results keep the batch order.
func (b Batch) Run(eval EvalFunc) []*Result {
	if eval == nil {
		eval = expression.Eval
	}

	results := make([]*Result, len(b))
	eg := errgroup.Group{}
	for i, c := range b {
		i := i
		c := c
		eg.Go(func() error {
			results[i] = runCase(eval, c)
			return nil
		})
	}
	_ = eg.Wait() // cases never fail the group

	return results
}

func runCase(eval EvalFunc, c *Case) *Result {
	r := &Result{Case: *c}

	ret, err := eval(c.Expression)
	if err != nil {
		r.err = err
		var exception types.Exception
		if errors.As(err, &exception) {
			r.Error = exception.Exception()
		} else {
			r.Error = err.Error()
		}

		if c.ExpectError != "" {
			tag, ok := types.TagOf(err)
			r.OK = ok && string(tag) == c.ExpectError
		}
		return r
	}

	r.Result = &ret
	switch {
	case c.ExpectError != "":
		r.OK = false
	case c.Expect != nil:
		r.OK = matchNumber(*c.Expect, ret)
	default:
		r.OK = true
	}
	return r
}

func matchNumber(expect string, ret expression.Number) bool {
	if expect == ret.String() {
		return true
	}
	// integers above 2^53 collapse as float64, so compare them exactly
	if i, ok := ret.Int64(); ok {
		if e, err := strconv.ParseInt(expect, 10, 64); err == nil {
			return e == i
		}
	}
	f, err := strconv.ParseFloat(expect, 64)
	return err == nil && f == ret.Float64()
}

type Summary struct {
	Total    int      `json:"total"`
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

func Summarize(results []*Result) Summary {
	failed := lo.Filter(results, func(r *Result, _ int) bool {
		return !r.OK
	})
	return Summary{
		Total:  len(results),
		Passed: len(results) - len(failed),
		Failed: len(failed),
		Failures: lo.Map(failed, func(r *Result, _ int) string {
			return r.Expression
		}),
	}
}
