package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/mcp"
	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/toolrouter/session"
	"github.com/fatih/color"
)

const banner = `
 _              _                _
| |_ ___   ___ | |_ __ ___  _   _| |_ ___ _ __
| __/ _ \ / _ \| | '__/ _ \| | | | __/ _ \ '__|
| || (_) | (_) | | | | (_) | |_| | ||  __/ |
 \__\___/ \___/|_|_|  \___/ \__,_|\__\___|_|
`

// Prompt is printed before every user turn
const Prompt = "User > "

// Caller invokes the entry points of the service
type Caller interface {
	Call(ctx context.Context, entry string, args map[string]string, sessionID string) (string, error)
}

// REPL reads requests line by line and prints the responses
type REPL struct {
	In         io.Reader
	Out        io.Writer
	Caller     Caller
	Classifier *router.Classifier
	Encoder    encoding.Encoder
	SessionID  string
}

// Run serves the session until exit, end of input or a transport failure
func (r *REPL) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	sessionID := r.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}

	cyan.Fprint(r.Out, banner)
	fmt.Fprintf(r.Out, "\nSession: %s. Type 'exit' or 'quit' to end.\n\n", sessionID)

	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.Out)
			return errors.WithStack(scanner.Err())
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			fmt.Fprintln(r.Out, "Goodbye.")
			return nil
		}

		outcome := r.Classifier.Classify(router.Request{Text: line, SessionID: sessionID})
		entry, args := entryPoint(outcome)
		dim.Fprintf(r.Out, "[route: %s, entry: %s]\n", outcome.Route(), entry)

		start := time.Now()
		text, err := r.Caller.Call(ctx, entry, args, sessionID)
		if err != nil {
			if errors.Is(err, mcp.ErrTransport) {
				red.Fprintf(r.Out, "CRITICAL CONNECTION ERROR: %v\n", err)
				return err
			}
			red.Fprintf(r.Out, "Error: %v\n", err)
			continue
		}

		green.Fprint(r.Out, "Router > ")
		r.render(entry, text)
		dim.Fprintf(r.Out, "(%s)\n", time.Since(start).Round(time.Millisecond))
	}
}

// render renders audit records as a table, everything else as text
func (r *REPL) render(entry, text string) {
	if entry == orchestrator.EntryAudit {
		if list, err := encoding.Decode[[]*audit.Record](r.Encoder, []byte(text)); err == nil {
			fmt.Fprintf(r.Out, "Logs found: %d\n", len(*list))
			printRecords(r.Out, *list)
			return
		}
	}
	fmt.Fprintln(r.Out, text)
}

// entryPoint returns the entry point serving the outcome and its arguments
func entryPoint(outcome router.Outcome) (string, map[string]string) {
	if o, ok := outcome.(router.SingleTool); ok {
		if ep, ok := orchestrator.EntryForTool(o.Call.Tool); ok {
			return ep.Name, o.Call.Arguments
		}
	}
	return orchestrator.EntryOrchestrator, map[string]string{
		orchestrator.ArgComplexQuery: outcomeText(outcome),
	}
}

func outcomeText(outcome router.Outcome) string {
	switch o := outcome.(type) {
	case router.SingleTool:
		return o.Request.Text
	case router.Defer:
		return o.Request.Text
	}
	return ""
}

func printRecords(out io.Writer, list []*audit.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSESSION\tTIMESTAMP\tSTATUS")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ToolName, r.SessionID, r.Timestamp.Format(time.RFC3339), r.Status)
	}
	_ = w.Flush()
}
