package calendar

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

var bulkPostHeader = []string{"Date", "Text", "Link(s)", "Media URL(s)"}

const bulkPostDateLayout = "2006-01-02 15:04"

// WriteBulkPost writes the scheduler import file: one post per complete day of
// uploaded images, dated from start at hour:00, with the thanks images
// appended to every post. It returns the number of posts written; with no
// complete day nothing is written.
func WriteBulkPost(w io.Writer, rows []Row, mediaURLs, thanksURLs []string, start time.Time, hour int) (int, error) {
	posts := len(mediaURLs) / BlocksPerDay
	if posts == 0 {
		return 0, nil
	}
	if posts > len(rows) {
		return 0, fmt.Errorf("bulk post: %d days of images but only %d calendar rows", posts, len(rows))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(bulkPostHeader); err != nil {
		return 0, err
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), hour, 0, 0, 0, start.Location())
	for i := 0; i < posts; i++ {
		media := append([]string{}, mediaURLs[i*BlocksPerDay:(i+1)*BlocksPerDay]...)
		media = append(media, thanksURLs...)
		record := []string{
			day.AddDate(0, 0, i).Format(bulkPostDateLayout),
			rows[i].PostText(),
			"",
			strings.Join(media, ","),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return posts, cw.Error()
}
