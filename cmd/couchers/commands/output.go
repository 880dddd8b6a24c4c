package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
)

// render prints v as indented JSON with --json, otherwise as a table.
func (a *app) render(v any, header []string, rows [][]string) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return a.table(header, rows)
}

func (a *app) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// message prints a one-line result, or {"result": msg} with --json.
func (a *app) message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if a.jsonOutput {
		return json.NewEncoder(a.out).Encode(map[string]string{"result": msg})
	}
	_, err := fmt.Fprintln(a.out, msg)
	return err
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
