// Command drmd reads a drmd document and writes the rendered HTML,
// following the CLI shape of the teacher's rite command (main.go):
// a urfave/cli/v2 app, zap for logging, and an optional output file
// derived from the input file name when --out isn't given.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/hesusruiz/vcutils/yaml"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"rsc.io/edit"

	"github.com/drpriver/drmd/drmd"
)

var log *zap.SugaredLogger

// process is the CLI's Action, grounded in hesusruiz/rite/main.go's
// process(c *cli.Context) error.
func process(c *cli.Context) error {
	debug := c.Bool("debug")

	var z *zap.Logger
	var err error
	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	log = z.Sugar()
	defer log.Sync()

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		log.Errorw("loading config", "error", err)
		return err
	}

	inputFileName := ""
	if c.Args().Present() {
		inputFileName = c.Args().First()
	}

	var input []byte
	if inputFileName == "" {
		input, err = readAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		input, err = os.ReadFile(inputFileName)
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputFileName, err)
		}
	}

	out, err := drmd.ToHTML(input)
	if err != nil {
		code := drmd.Code(err)
		log.Errorw("conversion failed", "file", inputFileName, "code", code, "error", err)
		return cli.Exit(err.Error(), int(code))
	}

	if c.Bool("highlight") {
		highlightStyle := c.String("highlight-style")
		if !c.IsSet("highlight-style") {
			highlightStyle = cfg.String("drmd.highlightStyle", highlightStyle)
		}
		rawBlocks, err := drmd.PreBlocks(input)
		if err != nil {
			return fmt.Errorf("collecting fenced blocks for highlighting: %w", err)
		}
		out = highlightPreBlocks(out, rawBlocks, highlightStyle)
	}

	if styleFile := c.String("style"); styleFile != "" {
		css, err := os.ReadFile(styleFile)
		if err != nil {
			return fmt.Errorf("reading stylesheet %s: %w", styleFile, err)
		}
		out = embedStylesheet(out, css)
	}

	outputFileName := c.String("out")
	if outputFileName == "" && inputFileName != "" {
		ext := path.Ext(inputFileName)
		if ext == "" {
			outputFileName = inputFileName + ".html"
		} else {
			outputFileName = strings.TrimSuffix(inputFileName, ext) + ".html"
		}
	}

	if outputFileName == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputFileName, out, 0664); err != nil {
		return fmt.Errorf("writing %s: %w", outputFileName, err)
	}
	log.Infow("wrote output", "file", outputFileName)
	return nil
}

// readAll drains r fully into memory; the core never streams (spec.md
// §5), so the CLI must have the whole document before calling ToHTML.
func readAll(r *os.File) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 64*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}

// highlightPreBlocks replaces each rendered <pre>...</pre> block in
// htmlOut with a chroma-highlighted rendering, the way hesusruiz/rite's
// RenderExampleNode does (lexers.Analyse, chroma.Coalesce,
// formatters/html, styles.Get). The dialect's fence carries no language
// tag (spec.md §4.3), so detection is always heuristic, exactly as the
// teacher falls back to when no explicit class is set.
//
// rawBlocks holds each fenced block's actual source, in document order,
// fetched via drmd.PreBlocks before escapeInto ever touched it. Tokenising
// the already-escaped HTML text instead (the rendered block body) would
// feed chroma's lexers mangled source - a literal "&gt;" where the source
// has ">" - and then have its HTML formatter escape that a second time,
// doubling entities. htmlOut's <pre> tags are matched positionally against
// rawBlocks, since both walks visit PRE nodes in the same document order.
func highlightPreBlocks(htmlOut []byte, rawBlocks [][]byte, styleName string) []byte {
	if styleName == "" {
		styleName = "github"
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := html.New(html.WithClasses(false))

	text := string(htmlOut)
	var out strings.Builder
	blockIndex := 0
	for {
		start := strings.Index(text, "<pre>")
		if start == -1 {
			out.WriteString(text)
			break
		}
		end := strings.Index(text[start:], "</pre>\n")
		if end == -1 {
			out.WriteString(text)
			break
		}
		end += start
		out.WriteString(text[:start])

		if blockIndex >= len(rawBlocks) {
			out.WriteString(text[start : end+len("</pre>\n")])
			text = text[end+len("</pre>\n"):]
			blockIndex++
			continue
		}
		source := string(rawBlocks[blockIndex])
		blockIndex++

		lexer := lexers.Analyse(source)
		if lexer == nil {
			lexer = lexers.Fallback
		}
		lexer = chroma.Coalesce(lexer)
		it, err := lexer.Tokenise(nil, source)
		if err != nil {
			out.WriteString(text[start : end+len("</pre>\n")])
		} else if err := formatter.Format(&out, style, it); err != nil {
			out.WriteString(text[start : end+len("</pre>\n")])
		}
		text = text[end+len("</pre>\n"):]
	}
	return []byte(out.String())
}

// embedStylesheet splices a <style> block in just before the document's
// closing </body>, using rsc.io/edit's Buffer (the same editor
// hesusruiz/rite's sliceedit package wraps) so the whole output isn't
// rebuilt by hand: a single queued Replace covers it.
func embedStylesheet(htmlOut []byte, css []byte) []byte {
	closeTag := "</body>"
	block := "<style>\n" + string(css) + "\n</style>\n"
	idx := bytes.Index(htmlOut, []byte(closeTag))
	if idx == -1 {
		return append(append([]byte{}, htmlOut...), []byte(block)...)
	}
	ed := edit.NewBuffer(htmlOut)
	ed.Replace(idx, idx+len(closeTag), block+closeTag)
	return ed.Bytes()
}

// loadConfig reads the optional YAML configuration block, the same
// pattern as p.Config.String("rite.codeStyle", "github") in
// rite/parser.go, via hesusruiz/vcutils/yaml. The only key process reads
// from it is drmd.highlightStyle; stylesheet embedding is controlled by
// --style alone.
func loadConfig(configFile string) (*yaml.YAML, error) {
	if configFile == "" {
		return yaml.ParseYaml("")
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configFile, err)
	}
	return yaml.ParseYaml(string(data))
}

func main() {
	app := &cli.App{
		Name:      "drmd",
		Version:   "v0.1",
		Compiled:  time.Now(),
		Usage:     "convert a drmd document to HTML",
		UsageText: "drmd [options] [INPUT_FILE] (reads stdin if no file is given)",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write HTML to `FILE` (default: stdout, or input file name with extension .html)",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "embed the stylesheet in `FILE` as a <style> block before </body>",
			},
			&cli.BoolFlag{
				Name:  "highlight",
				Usage: "syntax-highlight fenced code blocks with chroma",
			},
			&cli.StringFlag{
				Name:  "highlight-style",
				Value: "github",
				Usage: "chroma style name to use with --highlight",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "optional YAML configuration file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode (development logging)",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
