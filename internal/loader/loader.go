package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/w-h-a/support/storer"
)

var ErrMissingColumn = errors.New("csv is missing a required column")

const IdPrefix = "doc_"

var required = []string{"id", "question", "answer"}

// Load reads a support dataset with a header row naming at least id,
// question and answer. Optional category and product columns are carried
// over. Each row becomes a document titled by its question.
func Load(r io.Reader) ([]storer.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var docs []storer.Document

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		id := field(row, "id")
		if len(id) == 0 {
			continue
		}

		docs = append(docs, storer.Document{
			Id:       IdPrefix + id,
			Title:    field(row, "question"),
			Content:  field(row, "answer"),
			Category: field(row, "category"),
			Product:  field(row, "product"),
		})
	}

	return docs, nil
}

func LoadFile(path string) ([]storer.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}
