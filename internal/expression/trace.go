package expression

import (
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/k0kubun/pp"
)

const DebugEnv = "LRCALC_EXPRESSION_DEBUG"

// DebugFromEnv reports whether DebugEnv is set to a true value.
func DebugFromEnv() bool {
	v, err := strconv.ParseBool(os.Getenv(DebugEnv))
	return v && err == nil
}

// Tracer wraps Eval with debug output. The pipeline itself never writes
// anything; all tracing happens here.
type Tracer struct {
	Debug  bool
	Output io.Writer
}

func NewTracer(debug bool) *Tracer {
	return &Tracer{Debug: debug, Output: os.Stderr}
}

func (t *Tracer) Eval(source string) (Number, error) {
	if t == nil || !t.Debug {
		return Eval(source)
	}

	w := t.Output
	if w == nil {
		w = os.Stderr
	}
	logger := log.New(w, "[lrcalc] ", log.LstdFlags|log.Lmicroseconds)

	started := time.Now()
	logger.Printf("source: %q", source)

	expr, err := ParseExpr(source)
	if err != nil {
		logger.Printf("tokenize failed after %s: %v", time.Since(started), err)
		return Number{}, err
	}
	pp.Fprintln(w, expr.Tokens())

	ret, err := expr.Evaluate()
	if err != nil {
		logger.Printf("evaluate failed after %s: %v", time.Since(started), err)
		return Number{}, err
	}

	logger.Printf("result = %s (%s)", ret, time.Since(started))
	return ret, nil
}
