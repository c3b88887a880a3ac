package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// cursorMarker is appended to in-progress text so the reader can see the
// output is still growing.
const cursorMarker = "▌"

// Reporter renders progress events to a terminal. It accumulates streamed
// text and rewrites the current line as tokens arrive. A Reporter serves
// exactly one analysis call; build a fresh one per call.
type Reporter struct {
	w     io.Writer
	buf   strings.Builder
	steps int
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Handle(e Event) {
	switch e.Kind {
	case TokenDelta:
		r.buf.WriteString(e.Token)
		fmt.Fprintf(r.w, "\r%s%s", r.buf.String(), cursorMarker)

	case AgentAction:
		r.steps++
		fmt.Fprintf(r.w, "\r%s\n", stepStyle.Render(
			fmt.Sprintf("step %d: %s", r.steps, e.Tool)))

	case ToolStart:
		fmt.Fprintf(r.w, "\r%s\n", stepStyle.Render("using tool: "+e.Tool))

	case ToolEnd:
		fmt.Fprintf(r.w, "\r%s\n", doneStyle.Render("tool finished: "+e.Tool))

	case Completed:
		if r.buf.Len() > 0 {
			fmt.Fprintf(r.w, "\r%s\n", r.buf.String())
		}
		if e.Message != "" {
			fmt.Fprintf(r.w, "%s\n", doneStyle.Render(e.Message))
		}

	case Error:
		fmt.Fprintf(r.w, "\r%s\n", errStyle.Render(e.Message))
	}
}

// Steps reports how many discrete agent steps have been observed.
func (r *Reporter) Steps() int { return r.steps }

// Text returns the accumulated streamed output.
func (r *Reporter) Text() string { return r.buf.String() }
