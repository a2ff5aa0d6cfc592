// Package export renders event feedback as CSV for organizer downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/eventpulse/backend/internal/models"
)

// anonymousName replaces the author column when an entry was submitted anonymously.
const anonymousName = "Anonymous"

var header = []string{"feedback_id", "session_id", "author", "rating", "comment", "tags", "submitted_at"}

// FeedbackCSV renders feedback entries into a CSV document, one row per entry.
// Anonymous entries keep their rating and comment but hide the author.
func FeedbackCSV(list []models.Feedback) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(header)
	for _, f := range list {
		author := f.AuthorName
		if f.Anonymous {
			author = anonymousName
		}
		rec := []string{
			f.ID.String(),
			f.SessionID.String(),
			author,
			strconv.Itoa(f.Rating),
			f.Comment,
			strings.Join(f.Tags, ";"),
			f.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
