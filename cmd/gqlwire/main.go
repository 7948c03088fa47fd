package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gqlwire/gqlwire/internal/schema"
)

const rootUsage = `gqlwire — schema wiring & SDL tools

USAGE:
  gqlwire <command> [flags]

COMMANDS:
  validate         Parse & validate GraphQL SDL files
  render           Merge SDL files and print the normalized schema
  help             Show help for any command
`

const validateUsage = `validate FLAGS:
  <file>...        SDL files to validate (at least one required)
  (Exits non-zero on the first invalid file)
`

const renderUsage = `render FLAGS:
  -out <file>      Write rendered SDL to file (default: stdout)
  <file>...        SDL files to merge (at least one required)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("gqlwire", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "validate":
		return cmdValidate(cmdArgs)
	case "render":
		return cmdRender(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "validate":
		fmt.Print(validateUsage)
	case "render":
		fmt.Print(renderUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, validateUsage)
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprint(os.Stderr, validateUsage)
		return fmt.Errorf("at least one SDL file is required")
	}
	if _, err := buildFromFiles(files); err != nil {
		return err
	}
	fmt.Printf("OK: %d file(s) valid\n", len(files))
	return nil
}

func cmdRender(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write rendered SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderUsage)
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprint(os.Stderr, renderUsage)
		return fmt.Errorf("at least one SDL file is required")
	}
	sch, err := buildFromFiles(files)
	if err != nil {
		return err
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

// buildFromFiles concatenates the given SDL files and builds one schema,
// validating type references along the way.
func buildFromFiles(files []string) (*schema.Schema, error) {
	var merged strings.Builder
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		merged.Write(src)
		merged.WriteByte('\n')
	}
	sch, err := schema.BuildFromSDL(merged.String())
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return sch, nil
}
