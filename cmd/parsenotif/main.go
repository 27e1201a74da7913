// parsenotif runs the notification parser offline against one title and
// body and prints the structured result. Useful when a bank changes its
// notification wording and a new rule needs checking before deploy.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/wifi-access-backend/internal/parser"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var title, body, format string
	var listTitles bool

	flagSet := pflag.NewFlagSet("parsenotif", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringVar(&title, "title", "", "notification title")
	flagSet.StringVar(&body, "body", "", "notification body, or - to read it from stdin")
	flagSet.StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	flagSet.BoolVar(&listTitles, "titles", false, "list the recognized notification titles and exit")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if listTitles {
		for _, t := range parser.KnownTitles() {
			fmt.Fprintln(stdout, t)
		}
		return nil
	}

	if body == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading body from stdin: %w", err)
		}
		body = strings.TrimRight(string(data), "\n")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return fmt.Errorf("--title and --body are required")
	}

	return write(stdout, format, parser.Parse(title, body))
}

func write(w io.Writer, format string, res parser.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
