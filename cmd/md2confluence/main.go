package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"

	"md2confluence/internal/config"
	"md2confluence/internal/converter"
	"md2confluence/internal/logger"
	"md2confluence/internal/templates"
	"md2confluence/internal/tool"
)

func init() {
	version.SetDefaultModule("md2confluence")
}

var (
	idStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9"))
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c"))
	descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		themeName      string
		outPath        string
		configPath     string
		listTemplates  bool
		showTemplate   string
		templateID     string
		serve          bool
		detectLanguage bool
		logLevel       string
		showVersion    bool
	)

	flags := pflag.NewFlagSet("md2confluence", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&themeName, "theme", "t", "", "Code block theme (DJango, Emacs, FadeToGrey, Midnight, RDark, Eclipse, Confluence)")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.BoolVar(&listTemplates, "list-templates", false, "List available templates")
	flags.StringVar(&showTemplate, "show-template", "", "Print the Markdown of a template")
	flags.StringVar(&templateID, "template", "", "Convert a template instead of the inputs")
	flags.BoolVar(&serve, "serve", false, "Serve the conversion tools over MCP stdio")
	flags.BoolVar(&detectLanguage, "detect-language", false, "Guess a language for untagged code blocks")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: md2confluence [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nConverts Markdown to Confluence wiki markup. If no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	log := logger.NewWithLevel(stderr, logger.ParseLevel(cfg.Log.Level))
	if configPath != "" {
		log.ConfigLoaded(configPath, cfg.Log.Level)
	}

	repo, err := templates.Load(cfg.Templates.Dir)
	if err != nil {
		fmt.Fprintf(stderr, "load templates: %v\n", err)
		return 1
	}
	log.TemplatesLoaded(repo.Len(), cfg.Templates.Dir)

	opts := cfg.ConvertOptions()
	if flags.Changed("detect-language") {
		opts.DetectLanguage = detectLanguage
	}
	theme := opts.Theme
	if flags.Changed("theme") {
		theme = themeName
	}
	svc := tool.NewService(converter.NewConverter(log), repo, opts, log)

	switch {
	case serve:
		if err := tool.ServeStdio(tool.NewServer(svc, cfg.Server.Name, serverVersion(cfg), log)); err != nil {
			fmt.Fprintf(stderr, "serve: %v\n", err)
			return 1
		}
		return 0
	case listTemplates:
		printTemplates(stdout, svc.ListTemplates(), isTerminal(stdout))
		return 0
	case showTemplate != "":
		detail, err := svc.GetTemplate(showTemplate)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return writeOutput(outPath, stdout, stderr, detail.Content)
	case templateID != "":
		converted, err := svc.ConvertTemplate(templateID, theme)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return writeOutput(outPath, stdout, stderr, converted.ConfluenceMarkup)
	}

	markdown, err := readInputs(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	markup, err := svc.ConvertMarkdown(string(markdown), theme)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	return writeOutput(outPath, stdout, stderr, markup)
}

func serverVersion(cfg *config.Config) string {
	if cfg.Server.Version != "" {
		return cfg.Server.Version
	}
	return version.Current()
}

func printTemplates(w io.Writer, list []templates.Info, styled bool) {
	for _, info := range list {
		if !styled {
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, info.Name, info.Description)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n    %s\n",
			idStyle.Render(info.ID), nameStyle.Render(info.Name), descStyle.Render(info.Description))
	}
}

func writeOutput(path string, stdout, stderr io.Writer, text string) int {
	w, closer, err := resolveOutput(path, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if _, err := io.WriteString(w, text); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

type inputSource struct {
	name string
	open func() (io.Reader, io.Closer, error)
}

// readInputs reads every input in order. Inputs are joined with a newline
// when the previous one does not end with one, so a heading at the start of
// the next file stays a heading.
func readInputs(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(stdin)
	}
	var buf bytes.Buffer
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, err
		}
		data, err := src.read()
		if err != nil {
			return nil, errors.Wrap(err, src.name)
		}
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func (s inputSource) read() ([]byte, error) {
	r, closer, err := s.open()
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	return io.ReadAll(r)
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, errors.New("empty input argument")
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{name: raw, open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{name: raw, open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{name: raw, open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, errors.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	if dir := filepath.Dir(clean); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
