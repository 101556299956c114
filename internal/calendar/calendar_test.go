package calendar

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleCalendar = `1,AIと\n起業,中身の\nテキスト,img,T2,C2,img,T3,C3,img,T4,C4,"今日の投稿, です"

2,short,row
3,  Title  ," Content ",img,T2,C2,img,T3,C3,img,T4,C4,post three
`

func TestReadCalendar(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleCalendar))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Day != 1 || rows[1].Day != 2 || rows[2].Day != 3 {
		t.Fatalf("unexpected day numbering: %d %d %d", rows[0].Day, rows[1].Day, rows[2].Day)
	}
	if !rows[0].Valid() || rows[1].Valid() || !rows[2].Valid() {
		t.Fatalf("unexpected validity")
	}
	if rows[1].Blocks() != nil {
		t.Fatalf("short row must have no blocks")
	}

	blocks := rows[0].Blocks()
	if len(blocks) != BlocksPerDay {
		t.Fatalf("expected %d blocks, got %d", BlocksPerDay, len(blocks))
	}
	if blocks[0].Title != `AIと\n起業` || blocks[0].Content != `中身の\nテキスト` || blocks[0].Name != "cover" {
		t.Fatalf("unexpected cover block: %+v", blocks[0])
	}
	if blocks[3].Index != 4 || blocks[3].Title != "T4" || blocks[3].Content != "C4" {
		t.Fatalf("unexpected last block: %+v", blocks[3])
	}
	if rows[0].PostText() != "今日の投稿, です" {
		t.Fatalf("unexpected post text %q", rows[0].PostText())
	}

	b, ok := rows[2].Block(1)
	if !ok || b.Title != "Title" || b.Content != "Content" {
		t.Fatalf("texts not trimmed: %+v", b)
	}
	if _, ok := rows[2].Block(5); ok {
		t.Fatalf("block 5 should not exist")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "calendar.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestImageNames(t *testing.T) {
	if got := ImageName(3, 2); got != "day03_02.png" {
		t.Fatalf("ImageName = %s", got)
	}
	if got := ComposedName(7); got != "007.png" {
		t.Fatalf("ComposedName = %s", got)
	}
	day, index, ok := ParseImageName("day12_04.png")
	if !ok || day != 12 || index != 4 {
		t.Fatalf("ParseImageName = %d %d %v", day, index, ok)
	}
	for _, bad := range []string{"day1_2.png", "day01_05.png", "day01_02.jpg", "night01_02.png", "day00_01.png", "day01_02.png.tmp"} {
		if _, _, ok := ParseImageName(bad); ok {
			t.Fatalf("ParseImageName(%q) should fail", bad)
		}
	}
}

func TestWriteBulkPost(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleCalendar))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	media := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	thanks := []string{"thanks.png"}
	start := time.Date(2026, 1, 31, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	posts, err := WriteBulkPost(&buf, rows, media, thanks, start, 18)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if posts != 2 {
		t.Fatalf("expected 2 posts, got %d", posts)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(records) != 3 || strings.Join(records[0], ",") != "Date,Text,Link(s),Media URL(s)" {
		t.Fatalf("unexpected header/records: %q", records)
	}
	if records[1][0] != "2026-01-31 18:00" || records[2][0] != "2026-02-01 18:00" {
		t.Fatalf("unexpected dates: %s %s", records[1][0], records[2][0])
	}
	if records[1][1] != "今日の投稿, です" || records[1][2] != "" {
		t.Fatalf("unexpected text/link: %q", records[1])
	}
	if records[2][3] != "u4,u5,u6,u7,thanks.png" {
		t.Fatalf("unexpected media: %s", records[2][3])
	}
}

func TestWriteBulkPostNothingToPost(t *testing.T) {
	var buf bytes.Buffer
	posts, err := WriteBulkPost(&buf, nil, []string{"a", "b"}, nil, time.Now(), 18)
	if err != nil || posts != 0 || buf.Len() != 0 {
		t.Fatalf("expected no output, got posts=%d err=%v len=%d", posts, err, buf.Len())
	}
}
