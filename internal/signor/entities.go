package signor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ParseEntityFile reads a semicolon delimited SIGNOR entity file (protein
// family or complexes) into a lookup table. Each row is keyed both by its
// group identifier (first column) and its display name (second column); the
// value is the comma separated, trimmed identifier list from the third
// column.
func ParseEntityFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse entity file %s: %w", path, err)
	}

	table := make(map[string][]string)
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		var ids []string
		for _, entry := range strings.Split(record[2], ",") {
			ids = append(ids, strings.TrimSpace(entry))
		}
		table[record[1]] = ids
		table[record[0]] = ids
	}
	return table, nil
}
