package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yt-traffic/internal/domain"
)

const header = "Traffic source,Source type,Source title,Impressions,Impressions click-through rate (%),Views,Average view duration,Watch time (hours)\n"
const totals = "Total,,,\"12,000\",4.5,900,0:02:10,32.5\n"

func csvOf(rows ...string) []byte {
	return []byte(header + totals + strings.Join(rows, "\n") + "\n")
}

func TestParseBasicRows(t *testing.T) {
	res, err := Parse(csvOf(
		`YT_RELATED.abc,,Video A,"1,500",3.2%,120,1:05,2.2`,
		`EXT_URL.google.com,,Google,10,1.0,5,0:10,0.1`,
		`YT_RELATED.xyz_-9,,Video X,200,0,7,0:01:30,0.5`,
	), Options{})

	require.NoError(t, err)
	require.Equal(t, UTF8, res.Encoding)
	require.Equal(t, 3, res.DataRows)
	require.Equal(t, 1, res.Skipped)
	require.Empty(t, res.Malformed)
	require.Equal(t, []domain.VideoID{"abc", "xyz_-9"}, res.IDs())

	abc := res.Rows[0]
	require.Equal(t, "YT_RELATED.abc", abc.TrafficSource)
	require.Equal(t, int64(1500), abc.Impressions)
	require.InDelta(t, 3.2, abc.CTR, 1e-9)
	require.Equal(t, int64(120), abc.Views)
	require.Equal(t, 65*time.Second, abc.AvgViewDuration)
	require.InDelta(t, 2.2, abc.WatchTimeHours, 1e-9)
	require.Equal(t, 3, abc.Line)

	require.Equal(t, 90*time.Second, res.Rows[1].AvgViewDuration)
}

func TestParseDuplicatesKeepMaxViews(t *testing.T) {
	res, err := Parse(csvOf(
		`YT_RELATED.abc,,A,1,1,10,0:10,0.1`,
		`YT_RELATED.xyz,,X,1,1,3,0:10,0.1`,
		`YT_RELATED.abc,,A,2,2,50,0:20,0.2`,
		`YT_RELATED.abc,,A,3,3,50,0:30,0.3`,
	), Options{})

	require.NoError(t, err)
	require.Equal(t, 2, res.Duplicates)
	require.Equal(t, []domain.VideoID{"abc", "xyz"}, res.IDs())
	require.Equal(t, int64(50), res.Rows[0].Views)
	// tie on 50 views: the earlier row stays
	require.Equal(t, int64(2), res.Rows[0].Impressions)
	require.Equal(t, 5, res.Rows[0].Line)
}

func TestParseLatin1Fallback(t *testing.T) {
	// titles "Café" and "Niño" encoded as Latin-1
	data := csvOf(
		"YT_RELATED.abc,,Caf\xe9,10,1,20,0:10,0.1",
		"YT_RELATED.def,,Ni\xf1o,1,1,2,0:05,0.1",
	)

	res, err := Parse(data, Options{})
	require.NoError(t, err)
	require.Equal(t, Latin1, res.Encoding)
	require.Equal(t, []domain.VideoID{"abc", "def"}, res.IDs())
	require.Equal(t, int64(20), res.Rows[0].Views)
}

func TestParseLatin1OnlyFails(t *testing.T) {
	data := csvOf("YT_RELATED.abc,,Ni\xf1o,1,1,2,0:05,0.1")
	_, err := Parse(data, Options{Encodings: []Encoding{UTF8}})

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "encoding", fe.Field)
}

func TestParseUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvOf(`YT_RELATED.abc,,A,1,1,10,0:10,0.1`)...)
	res, err := Parse(data, Options{})
	require.NoError(t, err)
	require.Equal(t, UTF8, res.Encoding)
	require.Len(t, res.Rows, 1)
}

func TestParseMalformedRowsAreReported(t *testing.T) {
	res, err := Parse(csvOf(
		`YT_RELATED.good,,G,1,1,10,0:10,0.1`,
		`YT_RELATED.neg,,N,1,1,-4,0:10,0.1`,
		`YT_RELATED.ctr,,C,1,140,4,0:10,0.1`,
		`YT_RELATED.dur,,D,1,1,4,1:75,0.1`,
		`YT_RELATED.txt,,T,lots,1,4,0:10,0.1`,
	), Options{})

	require.NoError(t, err)
	require.Equal(t, []domain.VideoID{"good"}, res.IDs())
	require.Len(t, res.Malformed, 4)

	fields := make([]string, len(res.Malformed))
	for i, m := range res.Malformed {
		fields[i] = m.Field
	}
	require.Equal(t, []string{"views", "impressions click-through rate (%)", "average view duration", "impressions"}, fields)
	require.Equal(t, domain.VideoID("neg"), res.Malformed[0].VideoID)
	require.Equal(t, 4, res.Malformed[0].Line)
	require.ErrorIs(t, res.Malformed[0], errOutOfRange)
}

func TestParseSourceTypes(t *testing.T) {
	data := csvOf(
		`YT_RELATED.abc,,A,1,1,10,0:10,0.1`,
		`END_SCREEN.def,,D,1,1,10,0:10,0.1`,
		`YT_RELATED.bad id!,,B,1,1,10,0:10,0.1`,
	)

	res, err := Parse(data, Options{SourceTypes: []string{"YT_RELATED", "END_SCREEN"}})
	require.NoError(t, err)
	require.Equal(t, []domain.VideoID{"abc", "def"}, res.IDs())
	require.Equal(t, 1, res.Skipped)
}

func TestParseHeaderAliasesOverridePosition(t *testing.T) {
	data := []byte("Views,Traffic source,Watch time (hours),Average view duration,Impressions click-through rate (%),Impressions\n" +
		"900,Total,1,0:10,1,10\n" +
		"42,YT_RELATED.abc,1.5,0:20,2.5,300\n")

	res, err := Parse(data, Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.Equal(t, int64(42), row.Views)
	require.Equal(t, int64(300), row.Impressions)
	require.InDelta(t, 2.5, row.CTR, 1e-9)
	require.Equal(t, 20*time.Second, row.AvgViewDuration)
}

func TestParseFormatErrors(t *testing.T) {
	testCases := []struct {
		name  string
		data  string
		field string
	}{
		{"empty", "", "header"},
		{"narrow header", "Traffic source,Views\nTotal,1\nYT_RELATED.a,1\n", "impressions"},
		{"header only", header, "traffic source"},
		{"no data rows", header + totals, "traffic source"},
		{"no matching rows", header + totals + "EXT_URL.x,,X,1,1,1,0:01,0.1\n", "traffic source"},
		{"all malformed", header + totals + "YT_RELATED.a,,A,1,1,-1,0:01,0.1\n", "views"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), Options{})
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tc.field, fe.Field)
			require.Contains(t, fe.Error(), tc.field)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.csv")
	require.NoError(t, os.WriteFile(path, csvOf(`YT_RELATED.abc,,A,1,1,10,0:10,0.1`), 0o644))

	res, err := ParseFile(path, Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	testCases := map[string]Encoding{
		"utf8":       UTF8,
		"UTF-8":      UTF8,
		"latin1":     Latin1,
		"ISO-8859-1": Latin1,
		"cp1252":     Windows1252,
	}
	for in, want := range testCases {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseEncoding("ebcdic")
	require.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"", 0, true},
		{"0:00", 0, true},
		{"4:05", 4*time.Minute + 5*time.Second, true},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{"95", 95 * time.Second, true},
		{"2.5", 2500 * time.Millisecond, true},
		{"1:60", 0, false},
		{"1:2:3:4", 0, false},
		{"abc", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range testCases {
		got, err := parseDuration(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			require.Equal(t, tc.want, got, tc.in)
		} else {
			require.Error(t, err, tc.in)
		}
	}
}

func TestParseCount(t *testing.T) {
	testCases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"", 0, true},
		{"1,234", 1234, true},
		{" 12 ", 12, true},
		{"12.0", 12, true},
		{"-1", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range testCases {
		got, err := parseCount(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			require.Equal(t, tc.want, got, tc.in)
		} else {
			require.Error(t, err, tc.in)
		}
	}
}
