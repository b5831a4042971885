package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// renderJSON writes v as indented JSON. With a jq filter, each result of the filter is written instead.
func renderJSON(w io.Writer, v any, filter string) error {
	if filter == "" {
		return writeJSON(w, v)
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	// gojq only accepts plain JSON values
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("failed to decode output: %w", err)
	}

	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := result.(error); isErr {
			return fmt.Errorf("jq filter %q failed: %w", filter, err)
		}
		if err := writeJSON(w, result); err != nil {
			return err
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
