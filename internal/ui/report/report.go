// Package report renders plans, facts and run results for humans, or as
// JSON for tooling.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"github.com/imamik/etcdnode/internal/etcdconf"
	"github.com/imamik/etcdnode/internal/facts"
	"github.com/imamik/etcdnode/internal/provisioning"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidateFormat rejects anything but text and json.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use %s or %s)", format, FormatText, FormatJSON)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes reports to one writer. Styling is applied only when
// Styled is set, so output to pipes and files stays plain.
type Printer struct {
	W      io.Writer
	Format string
	Styled bool
}

// NewPrinter returns a Printer that styles its output when w is a terminal.
func NewPrinter(w io.Writer, format string) *Printer {
	if format == "" {
		format = FormatText
	}
	return &Printer{W: w, Format: format, Styled: format == FormatText && IsTerminal(w)}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.Styled {
		return text
	}
	return s.Render(text)
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintf(p.W, "%s\n", data)
	return err
}

// Plan prints what a run would do.
func (p *Printer) Plan(prep *provisioning.Preparation) error {
	if p.Format == FormatJSON {
		return p.JSON(prep)
	}

	var b strings.Builder
	p.title(&b, "etcdnode plan: "+prep.Identity.Member)

	p.section(&b, "Identity")
	row(&b, "member", prep.Identity.Member)
	row(&b, "matched by", string(prep.Identity.Method))
	row(&b, "data dir", prep.Plan.DataDir)

	p.section(&b, "Mode")
	if prep.Plan.Destructive {
		row(&b, "mode", p.style(dangerStyle, "destructive (reset)"))
		row(&b, "steps", "stop etcd, purge data dir, wait, configure, start")
		row(&b, "peer wait", fmt.Sprintf("%ds", prep.Plan.WaitSeconds))
	} else {
		row(&b, "mode", p.style(okStyle, "normal"))
		row(&b, "steps", "configure, ensure running")
	}

	p.section(&b, "etcd configuration")
	p.params(&b, prep.Params)

	_, err := io.WriteString(p.W, b.String())
	return err
}

// Facts prints the host facts and the address sets used for matching.
func (p *Printer) Facts(f facts.Facts, addrs facts.AddressSet) error {
	if p.Format == FormatJSON {
		return p.JSON(struct {
			Facts     facts.Facts      `json:"facts"`
			Addresses facts.AddressSet `json:"addresses"`
		}{f, addrs})
	}

	var b strings.Builder
	p.title(&b, "etcdnode facts: "+f.Hostname)

	p.section(&b, "Host")
	row(&b, "fqdn", f.FQDN)
	row(&b, "hostname", f.Hostname)
	row(&b, "os family", f.OSFamily)

	p.section(&b, "Interfaces")
	for _, iface := range facts.SplitInterfaces(f.Interfaces) {
		var parts []string
		if a := f.IPv4[iface]; a != "" {
			parts = append(parts, a)
		}
		if a := f.IPv6[iface]; a != "" {
			parts = append(parts, a)
		}
		if len(parts) == 0 {
			parts = append(parts, p.style(dimStyle, "no address"))
		}
		row(&b, iface, strings.Join(parts, ", "))
	}

	p.section(&b, "Candidate addresses")
	row(&b, "ipv4", listOrNone(addrs.IPv4))
	row(&b, "ipv6", listOrNone(addrs.IPv6))

	_, err := io.WriteString(p.W, b.String())
	return err
}

// Result summarizes a completed or failed run.
func (p *Printer) Result(prep *provisioning.Preparation, res *provisioning.Results, runErr error) error {
	if p.Format == FormatJSON {
		out := struct {
			Member  string                `json:"member"`
			Success bool                  `json:"success"`
			Error   string                `json:"error,omitempty"`
			Results *provisioning.Results `json:"results"`
		}{Member: prep.Identity.Member, Success: runErr == nil, Results: res}
		if runErr != nil {
			out.Error = runErr.Error()
		}
		return p.JSON(out)
	}

	var b strings.Builder
	if runErr != nil {
		b.WriteString(p.style(dangerStyle, "  FAILED "+prep.Identity.Member))
		b.WriteString("\n")
		_, err := io.WriteString(p.W, b.String())
		return err
	}

	b.WriteString(p.style(okStyle, "  OK "+prep.Identity.Member))
	b.WriteString("\n")
	if res == nil {
		_, err := io.WriteString(p.W, b.String())
		return err
	}
	if len(res.Updated) == 0 {
		b.WriteString(p.style(dimStyle, "    nothing changed"))
		b.WriteString("\n")
	}
	for _, path := range res.Updated {
		row(&b, "updated", path)
	}
	if res.ServiceStart {
		row(&b, "service", p.style(warnStyle, "started or restarted"))
	}
	if res.BackupKey != "" {
		row(&b, "backup", res.BackupKey)
	}

	_, err := io.WriteString(p.W, b.String())
	return err
}

func (p *Printer) params(b *strings.Builder, params etcdconf.Params) {
	rendered, err := etcdconf.Render(params)
	if err != nil {
		row(b, "error", err.Error())
		return
	}
	for _, line := range strings.Split(strings.TrimRight(string(rendered), "\n"), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func (p *Printer) title(b *strings.Builder, text string) {
	b.WriteString("\n")
	b.WriteString(p.style(titleStyle, "  "+text))
	b.WriteString("\n")
	b.WriteString(p.style(dimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n")
}

func (p *Printer) section(b *strings.Builder, name string) {
	b.WriteString("\n")
	b.WriteString(p.style(sectionStyle, "  "+name))
	b.WriteString("\n")
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "    %-12s %s\n", key+":", value)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
