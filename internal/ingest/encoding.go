package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type Encoding string

const (
	UTF8        Encoding = "utf-8"
	Latin1      Encoding = "latin-1"
	Windows1252 Encoding = "windows-1252"
)

var DefaultEncodings = []Encoding{UTF8, Latin1}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding accepts the usual spellings ("utf8", "ISO-8859-1", "cp1252").
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8":
		return UTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	}
	return "", fmt.Errorf("ingest: unknown encoding %q", s)
}

func decode(data []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8:
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(data), nil
	case Latin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case Windows1252:
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unsupported encoding %q", enc)
}

// decodeFirst tries each encoding in order and reports the one that worked.
func decodeFirst(data []byte, encs []Encoding) (string, Encoding, error) {
	var tried []string
	for _, enc := range encs {
		s, err := decode(data, enc)
		if err == nil {
			return s, enc, nil
		}
		tried = append(tried, fmt.Sprintf("%s: %v", enc, err))
	}
	return "", "", &FormatError{Field: "encoding", Reason: "no candidate decoded the file (" + strings.Join(tried, "; ") + ")"}
}
