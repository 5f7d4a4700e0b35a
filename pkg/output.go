package dupescan

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteResult renders the result in the requested format.
func WriteResult(w io.Writer, format string, result *Result) error {
	switch format {
	case OutputFormatJSON:
		return WriteJSON(w, result)
	case OutputFormatHuman:
		return WriteHuman(w, result)
	default:
		return &InvalidConfigError{
			Option: "format",
			Value:  format,
			Reason: "must be one of: human, json",
		}
	}
}

// WriteHuman renders one block per duplicate group followed by a
// summary line. Paths are listed in discovery order.
func WriteHuman(w io.Writer, result *Result) error {
	for _, group := range result.Groups {
		if _, err := fmt.Fprintf(
			w,
			"%d files, %s each, %s:\n",
			group.Count,
			HumanSize(group.Size),
			group.Hash,
		); err != nil {
			return fmt.Errorf("failed to write group header: %w", err)
		}
		for _, path := range group.Files {
			if _, err := fmt.Fprintf(w, "  %s\n", path); err != nil {
				return fmt.Errorf("failed to write group member: %w", err)
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(
		w,
		"%d duplicate groups found across %d files (%d size groups, %s hashed)\n",
		len(result.Groups),
		result.Stats.FilesIndexed,
		result.Stats.SizeGroups,
		HumanSize(result.Stats.BytesHashed),
	)
	return err
}

// WriteJSON renders the full result, one JSON document per line, so
// output can be piped into line-delimited tooling.
func WriteJSON(w io.Writer, result *Result) error {
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
