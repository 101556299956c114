package calendar

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// MinFields is the number of positional fields a calendar row must carry.
const MinFields = 13

const postTextColumn = 12

// Block is one carousel image of a day: its position and caption texts.
type Block struct {
	Index   int // 1..4
	Name    string
	Title   string
	Content string
}

type blockColumns struct {
	index   int
	title   int
	content int
	name    string
}

var blockLayout = []blockColumns{
	{index: 1, title: 1, content: 2, name: "cover"},
	{index: 2, title: 4, content: 5, name: "content1"},
	{index: 3, title: 7, content: 8, name: "content2"},
	{index: 4, title: 10, content: 11, name: "content3"},
}

// BlocksPerDay is the number of images composed for every calendar day.
var BlocksPerDay = len(blockLayout)

// Row is one day of the content calendar.
type Row struct {
	Day    int // 1-based
	Fields []string
}

// Valid reports whether the row has all positional fields.
func (r Row) Valid() bool {
	return len(r.Fields) >= MinFields
}

// Blocks returns the four caption blocks of a valid row, texts trimmed.
func (r Row) Blocks() []Block {
	if !r.Valid() {
		return nil
	}
	out := make([]Block, 0, len(blockLayout))
	for _, col := range blockLayout {
		out = append(out, Block{
			Index:   col.index,
			Name:    col.name,
			Title:   strings.TrimSpace(r.Fields[col.title]),
			Content: strings.TrimSpace(r.Fields[col.content]),
		})
	}
	return out
}

// Block returns the block with the given 1-based index.
func (r Row) Block(index int) (Block, bool) {
	for _, b := range r.Blocks() {
		if b.Index == index {
			return b, true
		}
	}
	return Block{}, false
}

// PostText is the caption used for the day's post in the bulk-post file.
func (r Row) PostText() string {
	if len(r.Fields) <= postTextColumn {
		return ""
	}
	return r.Fields[postTextColumn]
}

// Read parses a headerless calendar CSV. Blank lines are dropped and short
// rows are kept so the caller can report them.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		rows = append(rows, Row{Day: len(rows) + 1, Fields: rec})
	}
	return rows, nil
}

// ReadFile reads the calendar at path.
func ReadFile(path string) ([]Row, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	rows, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
