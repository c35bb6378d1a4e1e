// Package report makes otherwise-silent client failures visible during
// development. It catches panics at the process boundary and errors
// escaping spawned goroutines, renders them as a full diagnostic dump,
// and stays quiet (log-only) in production or inside the host shell.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/tgmarket/miniapp-client/pkg/logging"
)

// HostShellEnv is the environment marker set by the host shell's
// launcher. Its presence suppresses the diagnostic dump.
const HostShellEnv = "TG_HOST_SHELL"

// Options configures a Reporter.
type Options struct {
	// Production suppresses the diagnostic dump; failures are still
	// logged.
	Production bool
	// InHostShell suppresses the dump as well. Detected from
	// HostShellEnv when left false.
	InHostShell bool
	// Out receives the diagnostic dump. Defaults to os.Stderr.
	Out io.Writer
	// Logger receives the structured log line for every failure.
	Logger *logging.Logger
}

// Reporter surfaces unexpected failures. All methods are best-effort:
// the reporter never panics and never blocks the surrounding code.
type Reporter struct {
	opts Options
}

// New creates a reporter.
func New(opts Options) *Reporter {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("report")
	}
	if !opts.InHostShell && os.Getenv(HostShellEnv) != "" {
		opts.InHostShell = true
	}
	return &Reporter{opts: opts}
}

// Report surfaces an error. A nil error is ignored.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	r.surface("error", err.Error(), err)
}

// ReportValue surfaces an arbitrary failure payload, e.g. a recovered
// panic value.
func (r *Reporter) ReportValue(v interface{}) {
	if v == nil {
		return
	}
	r.surface("panic", stringify(v), v)
}

// Recover is the synchronous process boundary. Use it as
//
//	defer reporter.Recover()
//
// at the top of an entry point: a panic is reported and stops there,
// the process keeps running.
func (r *Reporter) Recover() {
	if v := recover(); v != nil {
		r.ReportValue(v)
	}
}

// Go runs fn on its own goroutine, reporting a returned error or a
// panic. Each failure produces exactly one report.
func (r *Reporter) Go(fn func() error) {
	go func() {
		defer r.Recover()
		if err := fn(); err != nil {
			r.Report(err)
		}
	}()
}

func (r *Reporter) surface(kind, text string, payload interface{}) {
	// The reporter must never take the process down itself.
	defer func() { _ = recover() }()

	r.opts.Logger.WithFields(map[string]interface{}{
		"kind":    kind,
		"failure": text,
	}).Error("unhandled client failure")

	if r.opts.Production || r.opts.InHostShell {
		return
	}

	var b strings.Builder
	b.WriteString("\n==================== CLIENT FAILURE ====================\n")
	fmt.Fprintf(&b, "kind: %s\n\n%s\n", kind, stringify(payload))
	if kind == "panic" {
		b.WriteString("\n")
		b.Write(debug.Stack())
	}
	b.WriteString("========================================================\n")
	_, _ = io.WriteString(r.opts.Out, b.String())
}

// stringify renders a failure payload safely: structured JSON when the
// value serializes, plain formatting otherwise.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case error:
		return val.Error()
	case string:
		return val
	}
	if data, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%+v", v)
}
