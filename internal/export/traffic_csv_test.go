package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"yt-traffic/internal/domain"
)

func sampleVideos() []domain.MergedVideo {
	published := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	return []domain.MergedVideo{
		{
			TrafficRow: domain.TrafficRow{VideoID: "abc", Views: 50, Impressions: 1200, CTR: 4.5, AvgViewDuration: 95 * time.Second, WatchTimeHours: 1.25},
			Lookup: domain.Available(domain.VideoMetadata{
				VideoID: "abc", Title: "Line one\nline two", ThumbnailURL: "https://i.ytimg.com/abc.jpg",
				PublishedAt: published, ViewCount: 2500,
			}),
			Bucket: domain.Bucket2To4Weeks,
		},
		{
			TrafficRow: domain.TrafficRow{VideoID: "xyz", Views: 10},
			Lookup:     domain.Unavailable(),
			Bucket:     domain.BucketUnknown,
		},
		{
			TrafficRow: domain.TrafficRow{VideoID: "err", Views: 1},
			Lookup:     domain.Failed(errors.New("timeout")),
			Bucket:     domain.BucketUnknown,
		},
	}
}

func TestWriteTrafficCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrafficCSV(&buf, sampleVideos()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Expected readable CSV, got %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "video_id,title,bucket,published_at,api_views,csv_views,impressions,ctr_percent,avg_view_duration,watch_time_hours,thumbnail_url,video_url,status" {
		t.Errorf("Unexpected header %v", records[0])
	}

	expected := []string{"abc", "Line one line two", "2_to_4_weeks", "2024-05-01T08:30:00Z", "2500", "50", "1200", "4.5", "1:35", "1.25", "https://i.ytimg.com/abc.jpg", "https://www.youtube.com/watch?v=abc", "available"}
	for i, want := range expected {
		if records[1][i] != want {
			t.Errorf("Column %s: expected %q, got %q", trafficHeader[i], want, records[1][i])
		}
	}

	if records[2][1] != "" || records[2][4] != "" || records[2][12] != "unavailable" {
		t.Errorf("Unexpected unavailable row %v", records[2])
	}
	if records[3][12] != "failed" || records[3][5] != "1" {
		t.Errorf("Unexpected failed row %v", records[3])
	}
}

func TestWriteFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	if err := WriteFile(path, sampleVideos()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file to exist, got %v", err)
	}
	if !strings.HasPrefix(string(data), "video_id,title,") {
		t.Errorf("Expected plain CSV, got %q", string(data[:20]))
	}
}

func TestWriteFileBrotli(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.br")
	if err := WriteFile(path, sampleVideos()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected file to exist, got %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(brotli.NewReader(f))
	if err != nil {
		t.Fatalf("Expected valid brotli stream, got %v", err)
	}
	if !strings.Contains(string(data), "https://www.youtube.com/watch?v=xyz") {
		t.Errorf("Expected decompressed CSV to contain xyz row, got %q", string(data))
	}
}

func TestIsCompressed(t *testing.T) {
	testCases := map[string]bool{
		"out.csv":    false,
		"out.csv.br": true,
		"OUT.BR":     true,
		"br":         false,
	}
	for path, want := range testCases {
		if got := IsCompressed(path); got != want {
			t.Errorf("IsCompressed(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2024, 6, 30, 14, 5, 9, 0, time.UTC)
	got := DefaultFileName(now, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	if got != "traffic-20240630-140509-1b4e28ba.csv" {
		t.Errorf("Unexpected file name %q", got)
	}
}

func TestFloatToString(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{1.5, "1.5"},
		{2.0, "2"},
		{0.0, "0"},
		{3.14159, "3.14159"},
	}

	for _, tc := range testCases {
		result := floatToString(tc.input)
		if result != tc.expected {
			t.Errorf("floatToString(%f) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
