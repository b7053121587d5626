package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/storer"
)

const dataset = `id,question,answer,category,product
1,How do I return an item?,"Returns are accepted within 30 days, with receipt.",returns,general
2,When will my laptop ship?,Laptops ship in 2 business days.,shipping,laptop
,orphan row,ignored,misc,none
`

func TestLoad(t *testing.T) {
	docs, err := Load(strings.NewReader(dataset))
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, storer.Document{
		Id:       "doc_1",
		Title:    "How do I return an item?",
		Content:  "Returns are accepted within 30 days, with receipt.",
		Category: "returns",
		Product:  "general",
	}, docs[0])
	assert.Equal(t, "doc_2", docs[1].Id)
	assert.Equal(t, "laptop", docs[1].Product)
}

func TestLoad_ColumnOrderAndOptionalColumns(t *testing.T) {
	docs, err := Load(strings.NewReader("\ufeffAnswer,ID,Question\nYes we do.,9,Do you ship abroad?\n"))
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "doc_9", docs[0].Id)
	assert.Equal(t, "Do you ship abroad?", docs[0].Title)
	assert.Equal(t, "Yes we do.", docs[0].Content)
	assert.Empty(t, docs[0].Category)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("id,question\n1,hi\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = Load(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("id,question,answer\n1,\"unterminated,x\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.csv")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))

	docs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
