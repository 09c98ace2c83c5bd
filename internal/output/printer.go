package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/pkghealth/internal/healthcheck"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatJSON, FormatYAML, FormatText}

type Printer interface {
	Print(rec healthcheck.Record) error
}

func NewPrinter(format string, w io.Writer) (Printer, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return &jsonPrinter{w: w}, nil
	case FormatYAML:
		return &yamlPrinter{w: w}, nil
	case FormatText:
		return &textPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) Print(rec healthcheck.Record) error {
	b, err := rec.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n", b)
	return err
}

type yamlPrinter struct {
	w       io.Writer
	printed bool
}

func (p *yamlPrinter) Print(rec healthcheck.Record) error {
	b, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	if p.printed {
		if _, err := io.WriteString(p.w, "---\n"); err != nil {
			return err
		}
	}
	p.printed = true
	_, err = p.w.Write(b)
	return err
}

type textPrinter struct {
	w io.Writer
}

// Print writes key=value pairs. String values are unquoted when they contain
// no whitespace; everything else keeps its compact JSON form.
func (p *textPrinter) Print(rec healthcheck.Record) error {
	parts := make([]string, 0, len(rec.Fields()))
	for _, f := range rec.Fields() {
		parts = append(parts, f.Name+"="+textValue(f.Value))
	}
	_, err := fmt.Fprintln(p.w, strings.Join(parts, " "))
	return err
}

func textValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" && !strings.ContainsAny(s, " \t\n\"=") {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
