package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/delg/pkg/demo"
	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/arthur-debert/delg/pkg/stress"
	"github.com/pterm/pterm"
)

// RenderSteps renders the demo walkthrough
func RenderSteps(steps []demo.Step) string {
	var b strings.Builder
	for i, step := range steps {
		fmt.Fprintf(&b, "%s %s\n",
			CountStyle.Render(fmt.Sprintf("%d.", i+1)),
			TitleStyle.Render(step.Title))
		b.WriteString(ListItemStyle.Render(MutedStyle.Render(step.Detail)) + "\n")
		for _, r := range step.Results {
			b.WriteString(ListItemStyle.Render(NormalStyle.Render("→ "+r)) + "\n")
		}
		b.WriteString(ListItemStyle.Render(MutedStyle.Render(fmt.Sprintf("handlers stored: %d", step.Handlers))) + "\n")
		if i < len(steps)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReport renders a stress report as a table followed by a verdict
func RenderReport(r *stress.Report) (string, error) {
	data := pterm.TableData{
		{"metric", "value"},
		{"adders", fmt.Sprint(r.Options.Adders)},
		{"invokers × passes", fmt.Sprintf("%d × %d", r.Options.Invokers, r.Options.Invokes)},
		{"owners closed", fmt.Sprint(r.Closed)},
		{"handler calls", fmt.Sprint(r.Calls)},
		{"stored after final pass", fmt.Sprint(r.Stored)},
		{"expected", fmt.Sprint(r.Expected())},
		{"ran in final pass", fmt.Sprint(r.FinalCalls)},
		{"partial entries seen", fmt.Sprint(r.Partial)},
		{"elapsed", r.Elapsed.Round(time.Microsecond).String()},
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render report")
	}

	verdict := SuccessStyle.Render("OK: no registrations lost, duplicated or seen half-built")
	if err := r.Verify(); err != nil {
		verdict = RenderError(err)
	}
	return table + "\n" + verdict + "\n", nil
}

// RenderError renders an error, one line per joined error
func RenderError(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(err.Error(), "\n")
	for i, line := range lines {
		lines[i] = ErrorStyle.Render("✗ " + line)
	}
	return strings.Join(lines, "\n")
}
