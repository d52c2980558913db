package utils

import (
	"fmt"
	"time"
)

// upload_date layouts seen from the backend: python's isoformat() with and
// without fractional seconds, plus RFC3339 in case a timezone shows up.
var uploadDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// FormatFileSize renders a byte count the way the document list shows it.
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

// FormatUploadDate renders a server upload_date string as a short date.
// Unparseable input is returned unchanged rather than hidden.
func FormatUploadDate(raw string) string {
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}
