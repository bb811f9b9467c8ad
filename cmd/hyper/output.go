package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

// notOKError signals a not-ok result that has already been printed.
type notOKError struct {
	status int
}

func (e *notOKError) Error() string {
	return fmt.Sprintf("request not ok (status %d)", e.status)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes res as JSON and reports not-ok results as notOKError.
func (a *app) printResult(res hyper.Result) error {
	if err := a.printJSON(res); err != nil {
		return err
	}
	if !res.IsOK() {
		return &notOKError{status: res.StatusCode()}
	}
	return nil
}

// readArg returns the raw bytes of a JSON argument: "-" reads stdin and
// "@path" reads a file.
func readArg(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(arg[1:])
	default:
		return []byte(arg), nil
	}
}

func parseJSONArg(arg string, stdin io.Reader, v any) error {
	data, err := readArg(arg, stdin)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON argument: %w", err)
	}
	return nil
}

// parseSort reads "field" or "field:desc".
func parseSort(specs []string) ([]hyper.SortField, error) {
	out := make([]hyper.SortField, 0, len(specs))
	for _, s := range specs {
		field, dir, _ := strings.Cut(s, ":")
		if field == "" {
			return nil, fmt.Errorf("invalid sort %q: expected field[:asc|desc]", s)
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			out = append(out, hyper.SortField{Field: field})
		case "desc":
			out = append(out, hyper.SortField{Field: field, Desc: true})
		default:
			return nil, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return out, nil
}
