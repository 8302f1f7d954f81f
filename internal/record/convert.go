package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var primitiveIDPattern = regexp.MustCompile(`^(BP|FMA)\d+`)

// ParseLine parses one line of the text listing:
//
//	<composite_id> <composite name...> <primitive_id> <primitive name...>
//
// The primitive ID is the first token after the composite ID that looks like
// BP123 or FMA123. ok is false when the line has no usable layout.
func ParseLine(line string) (Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Record{}, false
	}

	idx := -1
	for i := 1; i < len(tokens); i++ {
		if primitiveIDPattern.MatchString(tokens[i]) {
			idx = i
			break
		}
	}
	if idx <= 1 || idx == len(tokens)-1 {
		return Record{}, false
	}

	return Record{
		CompositeID:   tokens[0],
		CompositeName: strings.Join(tokens[1:idx], " "),
		PrimitiveID:   tokens[idx],
		PrimitiveName: strings.Join(tokens[idx+1:], " "),
	}, true
}

// ParseListing reads every parseable line of r.
func ParseListing(r io.Reader) ([]Record, error) {
	var out []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if rec, ok := ParseLine(scanner.Text()); ok {
			out = append(out, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ConvertText converts the listing at txtPath to a JSON dataset at jsonPath
// and returns the number of records written.
func ConvertText(txtPath, jsonPath string) (int, error) {
	in, err := os.Open(txtPath)
	if err != nil {
		return 0, fmt.Errorf("cannot open listing %s: %w", txtPath, err)
	}
	defer in.Close()

	records, err := ParseListing(in)
	if err != nil {
		return 0, fmt.Errorf("cannot read listing %s: %w", txtPath, err)
	}
	if records == nil {
		records = []Record{}
	}

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(jsonPath, append(b, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("cannot write dataset %s: %w", jsonPath, err)
	}
	return len(records), nil
}
