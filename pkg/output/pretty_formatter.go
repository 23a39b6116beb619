package output

import (
	"fmt"
	"strings"
)

// PrettyFormatter formats a session's output in a human-readable,
// colored format.
type PrettyFormatter struct{}

// NewPrettyFormatter creates a new pretty formatter.
func NewPrettyFormatter() *PrettyFormatter {
	return &PrettyFormatter{}
}

// Format formats the output in a pretty, hierarchical manner.
func (f *PrettyFormatter) Format(output SessionOutput, options FormatterOptions) (string, error) {
	var sb strings.Builder
	cs := options.ColorScheme
	if cs == nil {
		cs = DefaultColorScheme()
	}

	interactions := output.Interactions
	if len(options.Filters) > 0 {
		interactions = filterInteractions(interactions, options.Filters)
	}

	f.formatHeader(&sb, output, cs)

	if output.Summary != nil {
		f.formatSummary(&sb, output.Summary, cs)
	}

	if len(interactions) > 0 {
		f.formatInteractions(&sb, interactions, cs, options.Verbosity)
	}

	if len(output.Errors) > 0 {
		f.formatErrors(&sb, output.Errors, cs)
	}

	return sb.String(), nil
}

func (f *PrettyFormatter) formatHeader(sb *strings.Builder, output SessionOutput, cs *ColorScheme) {
	headerText := fmt.Sprintf(" %s ", strings.ToUpper(output.Module))
	borderLen := 60
	paddingLen := (borderLen - len(headerText)) / 2
	if paddingLen < 0 {
		paddingLen = 0
	}
	leftPadding := strings.Repeat("═", paddingLen)
	rightPadding := strings.Repeat("═", borderLen-paddingLen-len(headerText))

	sb.WriteString(cs.Header.Sprintf("%s%s%s\n", leftPadding, headerText, rightPadding))

	sb.WriteString(cs.Label.Sprint("Session: "))
	sb.WriteString(fmt.Sprintf("%s\n", output.SessionID))

	sb.WriteString(cs.Label.Sprint("Time: "))
	sb.WriteString(fmt.Sprintf("%s\n", output.Timestamp.Format("2006-01-02 15:04:05")))

	if output.Duration > 0 {
		sb.WriteString(cs.Label.Sprint("Duration: "))
		sb.WriteString(fmt.Sprintf("%s\n", HumanizeDuration(output.Duration)))
	}

	sb.WriteString("\n")
}

func (f *PrettyFormatter) formatSummary(sb *strings.Builder, summary *Summary, cs *ColorScheme) {
	sb.WriteString(cs.Section.Sprint("▼ Summary\n"))

	statusColor := cs.Success
	if summary.Status == "failed" || summary.Status == "error" {
		statusColor = cs.Error
	} else if summary.Status == "warning" {
		statusColor = cs.Warning
	}

	sb.WriteString(Indent(1))
	sb.WriteString(cs.Label.Sprint("Status: "))
	sb.WriteString(statusColor.Sprintf("%s\n", summary.Status))

	sb.WriteString(Indent(1))
	sb.WriteString(cs.Label.Sprint("Interactions: "))
	sb.WriteString(fmt.Sprintf("%d\n", summary.TotalInteractions))

	if summary.ConsecutiveTimeouts > 0 {
		sb.WriteString(Indent(1))
		sb.WriteString(cs.Warning.Sprint("Consecutive sensor timeouts: "))
		sb.WriteString(fmt.Sprintf("%d\n", summary.ConsecutiveTimeouts))
	}

	sb.WriteString("\n")
}

func (f *PrettyFormatter) formatInteractions(sb *strings.Builder, interactions []Interaction, cs *ColorScheme, verbosity VerbosityLevel) {
	sb.WriteString(cs.Section.Sprint("▼ Interactions\n"))

	for _, i := range interactions {
		sb.WriteString(Indent(1))
		sb.WriteString(cs.FormatStatus(true))
		if i.Kind != "" {
			sb.WriteString(fmt.Sprintf(" %-5s", i.Kind))
		}
		sb.WriteString(fmt.Sprintf(" t=%d  screen=(%d,%d)", i.Timestamp, i.VirtualX, i.VirtualY))
		if verbosity >= VerbosityVerbose {
			sb.WriteString(cs.Dim.Sprintf("  phys=(%.1f,%.1f,%.1f)", i.PhysX, i.PhysY, i.PhysZ))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
}

// errorMessageMaxLen bounds how much of a long error message the
// pretty formatter prints on the summary line before truncating.
const errorMessageMaxLen = 100

func (f *PrettyFormatter) formatErrors(sb *strings.Builder, errs []Error, cs *ColorScheme) {
	sb.WriteString(cs.Section.Sprint("▼ Errors\n"))
	for _, e := range errs {
		sb.WriteString(Indent(1))
		sb.WriteString(cs.Error.Sprintf("✗ [%s] %s", e.Phase, TruncateString(e.Message, errorMessageMaxLen)))
		sb.WriteString("\n")
		if e.Details != "" {
			sb.WriteString(cs.Dim.Sprint(WrapText(e.Details, 76, 2)))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}
