// AngelaMos | 2026
// cite.go

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/science-ai/backend/internal/citation"
)

// sourcesFile accepts either a bare list of sources or a document with a
// sources key. JSON input parses as YAML.
type sourcesFile struct {
	Title   string            `yaml:"title"`
	Sources []citation.Source `yaml:"sources"`
}

type CiteCmd struct {
	File   string `arg:"" help:"YAML or JSON file with sources (- for stdin)."`
	Style  string `short:"s" help:"Citation style." default:"apa7"`
	Format string `short:"f" help:"Output format." default:"text" enum:"text,bibtex,ris,xlsx"`
	Title  string `help:"Bibliography heading override."`
	Output string `short:"o" help:"Output file (default stdout)." type:"path"`
}

func (c *CiteCmd) Run() error {
	raw, err := readInput(c.File)
	if err != nil {
		return err
	}

	doc, err := parseSources(raw)
	if err != nil {
		return err
	}

	title := c.Title
	if title == "" {
		title = doc.Title
	}

	if c.Format == "xlsx" && c.Output == "" {
		return fmt.Errorf("xlsx output requires --output")
	}

	var buf bytes.Buffer
	if err := render(&buf, doc.Sources, c.Style, c.Format, title); err != nil {
		return err
	}

	if c.Output == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(c.Output, buf.Bytes(), 0o644)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseSources(raw []byte) (sourcesFile, error) {
	var doc sourcesFile

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return doc, fmt.Errorf("parse sources: %w", err)
	}

	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&doc.Sources); err != nil {
			return doc, fmt.Errorf("parse sources: %w", err)
		}
		return doc, nil
	}

	if err := node.Decode(&doc); err != nil {
		return doc, fmt.Errorf("parse sources: %w", err)
	}
	return doc, nil
}

func render(w io.Writer, sources []citation.Source, styleName, format, title string) error {
	style, err := citation.ParseStyle(styleName)
	if err != nil {
		return err
	}

	switch format {
	case "bibtex":
		out, err := citation.ExportBibTeX(sources)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "ris":
		out, err := citation.ExportRIS(sources)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "xlsx":
		return citation.WriteXLSX(w, sources, style)
	}

	var opts []citation.Option
	if title != "" {
		opts = append(opts, citation.WithTitle(title))
	}
	out, err := citation.GenerateBibliography(sources, style, opts...)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

type StylesCmd struct{}

func (c *StylesCmd) Run() error {
	return writeStyles(os.Stdout)
}

func writeStyles(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXAMPLE")
	for _, s := range citation.Styles() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Example)
	}
	return tw.Flush()
}
