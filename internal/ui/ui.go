// Package ui renders tables, prompts, and JSON output for the CLI.
//
// Human output goes through text/tabwriter with fatih/color accents; machine
// output (--json) is indented JSON on stdout with nothing else mixed in.
package ui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"guppi/internal/discovery"
	"guppi/internal/registry"
	"guppi/internal/router"
	"guppi/internal/source"
)

var (
	header = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Stdin is the prompt input stream, swappable in tests.
var Stdin io.Reader = os.Stdin

// WriteJSON prints v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// Confirm asks a yes/no question on stdout and reads the answer from Stdin.
// Anything other than y/yes (case-insensitive) is a no.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// ShortenPath makes a path friendlier for table display: under the home
// directory it becomes ~/..., under the working directory it becomes
// relative, otherwise it is returned as is.
func ShortenPath(path string) string {
	if home, err := os.UserHomeDir(); err == nil {
		if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join("~", rel)
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// SearchTable renders discovered tools sorted by name.
func SearchTable(w io.Writer, tools []discovery.Tool) {
	if len(tools) == 0 {
		fmt.Fprintln(w, "No tools found in sources")
		fmt.Fprintln(w, "\nAdd a source with: guppi tool source add <name> <url>")
		return
	}

	sorted := make([]discovery.Tool, len(tools))
	copy(sorted, tools)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", header("TOOL"), header("SOURCE"), header("LOCATION"), header("DESCRIPTION"))
	for _, tool := range sorted {
		src := tool.Source
		if src == "" {
			src = "unknown"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tool.Name, src, dim(ShortenPath(tool.Path)), tool.Description)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", dim(fmt.Sprintf("Total: %d tool(s) found", len(sorted))))
}

// InstalledTable renders the guppi-prefixed executables found on PATH.
func InstalledTable(w io.Writer, tools []router.InstalledTool) {
	if len(tools) == 0 {
		fmt.Fprintln(w, "No tools installed")
		fmt.Fprintln(w, "\nInstall tools with: guppi tool install <name>")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", header("NAME"), header("EXECUTABLE"))
	for _, tool := range tools {
		fmt.Fprintf(tw, "%s\t%s\n", tool.Name, dim(ShortenPath(tool.Path)))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", dim(fmt.Sprintf("Total: %d tool(s) installed", len(tools))))
}

// SourcesTable renders the registered sources.
func SourcesTable(w io.Writer, records []source.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sources configured")
		fmt.Fprintln(w, "\nAdd sources with: guppi tool source add <name> <url>")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", header("NAME"), header("TYPE"), header("LOCATION"))
	for _, rec := range records {
		location := rec.Path
		if rec.Type == registry.KindGit && rec.URL != "" {
			location = rec.URL
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Name, rec.Type, ShortenPath(location))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", dim(fmt.Sprintf("Total: %d source(s) configured", len(records))))
}

// WelcomePanel prints the styled banner shown on the bare help screen.
func WelcomePanel(w io.Writer) {
	title := color.New(color.FgCyan, color.Bold).Sprint("GUPPI")
	fmt.Fprintf(w, "%s - General Use Personal Program Interface\n", title)
	fmt.Fprintln(w, dim("A plugin framework for composing deterministic tools"))
	fmt.Fprintln(w)
}
