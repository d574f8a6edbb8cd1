package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output formats for solutions.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ValidOutputs is the set of supported solution output formats.
var ValidOutputs = map[string]bool{
	OutputText: true,
	OutputJSON: true,
}

// ValidateOutput checks that an output format is valid.
func ValidateOutput(format string) error {
	if !ValidOutputs[format] {
		return fmt.Errorf("invalid output: %q (must be one of: text, json)", format)
	}
	return nil
}

// WriteSolutions writes sols in format. Text output has one line per
// solution: the word, or "!" and the error for failed targets.
func WriteSolutions(w io.Writer, sols []Solution, format string) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sols)
	case OutputText:
		for _, s := range sols {
			if _, err := fmt.Fprintln(w, FormatSolution(s)); err != nil {
				return err
			}
		}
		return nil
	default:
		return ValidateOutput(format)
	}
}

// FormatSolution renders one solution as a single line.
func FormatSolution(s Solution) string {
	if s.Error != "" {
		return "! " + s.Error
	}
	if s.Length == 0 {
		return "(identity)"
	}
	return s.Word
}

// ReadTargets reads one solve request per non-empty line. Lines starting
// with '#' are comments. A line "<target> | <labels>" requests a colored
// solve.
func ReadTargets(r io.Reader) ([]SolveRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var reqs []SolveRequest
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		target, labels, _ := strings.Cut(line, "|")
		reqs = append(reqs, SolveRequest{
			Target: strings.TrimSpace(target),
			Labels: strings.TrimSpace(labels),
		})
	}
	return reqs, nil
}
