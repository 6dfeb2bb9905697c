package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/karupanerura/lrcalc/internal/batch"
	"github.com/karupanerura/lrcalc/internal/expression"
	"github.com/karupanerura/lrcalc/internal/server"
	"github.com/karupanerura/lrcalc/internal/types"
	"github.com/mattn/go-isatty"
)

type Option struct {
	File    string `short:"f" long:"file" description:"[OPTIONAL] Batch file of expressions (.json, .yaml)" required:"false"`
	Listen  string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the evaluation API" required:"false"`
	Format  string `long:"format" description:"Output format" choice:"text" choice:"json" default:"text"`
	Debug   bool   `long:"debug" description:"Trace tokens and results to stderr (also enabled by LRCALC_EXPRESSION_DEBUG)"`
	EnvFile string `long:"env-file" description:"dotenv file loaded before running" default:".env"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Usage = "[OPTIONS] [--] EXPRESSION"
	rest, err := parser.ParseArgs(separateExpression(args))
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(stdout)
			return 1
		}
	}

	modes := 0
	for _, enabled := range []bool{len(rest) != 0, opt.File != "", opt.Listen != ""} {
		if enabled {
			modes++
		}
	}
	if modes != 1 {
		parser.WriteHelp(stdout)
		return 1
	}

	if err = loadEnvFile(opt.EnvFile); err != nil {
		log.Printf("failed to load env file: %v", err)
		return 1
	}

	tracer := expression.NewTracer(opt.Debug || expression.DebugFromEnv())
	tracer.Output = stderr

	// server mode
	if opt.Listen != "" {
		if err = serveEvaluations(opt.Listen, tracer.Eval); err != nil {
			log.Printf("failed to serve evaluations: %v", err)
			return 1
		}
		return 0
	}

	// batch mode
	if opt.File != "" {
		b, err := batch.LoadFile(opt.File)
		if err != nil {
			log.Printf("failed to load batch: %v", err)
			return 1
		}
		return runBatch(b, tracer.Eval, opt.Format, stdout)
	}

	source := strings.Join(rest, " ")
	ret, err := tracer.Eval(source)
	if err != nil {
		if _, err := fmt.Fprintln(stderr, err.Error()); err != nil {
			log.Printf("failed to dump evaluation error: %v", err)
		}
		var exception types.Exception
		if errors.As(err, &exception) {
			if err := dumpJSON(stderr, exception.Exception()); err != nil {
				log.Printf("failed to dump evaluation error as JSON: %v", err)
			}
		}
		return 1
	}

	switch opt.Format {
	case "json":
		err = dumpJSON(stdout, map[string]any{"expression": source, "result": ret})
	default:
		_, err = fmt.Fprintln(stdout, ret.String())
	}
	if err != nil {
		log.Printf("failed to dump evaluation result: %v", err)
		return 1
	}
	return 0
}

var negativeExpression = regexp.MustCompile(`^-\s*[0-9.(]`)

// separateExpression inserts "--" before the first argument that reads as an
// expression with a leading minus, such as "-5+3" or "-(1+2)", so that it is
// not parsed as a short option.
func separateExpression(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if negativeExpression.MatchString(arg) {
			separated := make([]string, 0, len(args)+1)
			separated = append(separated, args[:i]...)
			separated = append(separated, "--")
			return append(separated, args[i:]...)
		}
	}
	return args
}

func runBatch(b batch.Batch, eval batch.EvalFunc, format string, w io.Writer) int {
	results := b.Run(eval)
	summary := batch.Summarize(results)

	var err error
	switch format {
	case "json":
		err = dumpJSON(w, map[string]any{"results": results, "summary": summary})
	default:
		for _, r := range results {
			status := "ok"
			if !r.OK {
				status = "NG"
			}
			if r.Err() != nil {
				_, err = fmt.Fprintf(w, "%s\t%s\t%v\n", status, r.Expression, r.Err())
			} else {
				_, err = fmt.Fprintf(w, "%s\t%s\t= %s\n", status, r.Expression, r.Result)
			}
			if err != nil {
				break
			}
		}
		if err == nil {
			_, err = fmt.Fprintf(w, "passed %d/%d\n", summary.Passed, summary.Total)
		}
	}
	if err != nil {
		log.Printf("failed to dump batch results: %v", err)
		return 1
	}

	if summary.Failed != 0 {
		return 1
	}
	return 0
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load(%q): %w", path, err)
	}
	return nil
}

func serveEvaluations(listen string, evaluate func(string) (expression.Number, error)) error {
	srv := http.Server{
		Handler: server.NewHTTPHandler(evaluate),
		Addr:    listen,
	}

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
