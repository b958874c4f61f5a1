package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"yt-traffic/internal/domain"
	"yt-traffic/internal/report"
)

// Keep header order EXACT.
var trafficHeader = []string{
	"video_id",
	"title",
	"bucket",
	"published_at",
	"api_views",
	"csv_views",
	"impressions",
	"ctr_percent",
	"avg_view_duration",
	"watch_time_hours",
	"thumbnail_url",
	"video_url",
	"status",
}

// WriteTrafficCSV writes one row per merged video, in the given order.
func WriteTrafficCSV(w io.Writer, videos []domain.MergedVideo) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(trafficHeader); err != nil {
		return err
	}
	for _, v := range videos {
		if err := cw.Write(toTrafficRow(v)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toTrafficRow(v domain.MergedVideo) []string {
	var title, published, apiViews, thumb string
	if m := v.Lookup.Metadata; m != nil {
		title = cleanField(m.Title)
		if !m.PublishedAt.IsZero() {
			published = m.PublishedAt.UTC().Format(time.RFC3339)
		}
		apiViews = strconv.FormatInt(m.ViewCount, 10)
		thumb = m.ThumbnailURL
	}

	return []string{
		string(v.VideoID),                        // video_id
		title,                                    // title
		string(v.Bucket),                         // bucket
		published,                                // published_at
		apiViews,                                 // api_views
		strconv.FormatInt(v.Views, 10),           // csv_views
		strconv.FormatInt(v.Impressions, 10),     // impressions
		floatToString(v.CTR),                     // ctr_percent
		report.FormatDuration(v.AvgViewDuration), // avg_view_duration
		floatToString(v.WatchTimeHours),          // watch_time_hours
		thumb,                                    // thumbnail_url
		v.URL(),                                  // video_url
		v.Lookup.Status.String(),                 // status
	}
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// cleanField keeps each record on one line.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteFile writes the export to path, creating parent directories.
// A ".br" suffix brotli-compresses the output.
func WriteFile(path string, videos []domain.MergedVideo) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()

	if !IsCompressed(path) {
		return WriteTrafficCSV(f, videos)
	}

	bw := brotli.NewWriterLevel(f, brotli.DefaultCompression)
	if err := WriteTrafficCSV(bw, videos); err != nil {
		_ = bw.Close()
		return err
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("export: brotli %s: %w", path, err)
	}
	return nil
}

func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".br")
}

// DefaultFileName names an export after the run time and session.
func DefaultFileName(now time.Time, session string) string {
	if len(session) > 8 {
		session = session[:8]
	}
	return fmt.Sprintf("traffic-%s-%s.csv", now.UTC().Format("20060102-150405"), session)
}
