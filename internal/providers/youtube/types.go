package youtube

import (
	"encoding/json"
	"strconv"
	"strings"
)

type VideoListResponse struct {
	Items    []Video `json:"items"`
	PageInfo struct {
		TotalResults   int `json:"totalResults"`
		ResultsPerPage int `json:"resultsPerPage"`
	} `json:"pageInfo"`
}

type Video struct {
	ID         string     `json:"id"`
	Snippet    Snippet    `json:"snippet"`
	Statistics Statistics `json:"statistics"`
}

type Snippet struct {
	Title       string               `json:"title"`
	PublishedAt string               `json:"publishedAt"`
	ChannelID   string               `json:"channelId"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Statistics struct {
	ViewCount    Count `json:"viewCount"`
	LikeCount    Count `json:"likeCount"`
	CommentCount Count `json:"commentCount"`
}

// Count is a non-negative counter. The API sends counters as strings
// ("1234"), but numbers are accepted too. Anything else decodes to 0.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}

	// string: "1234"
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "1.2e3" or similar
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			*c = 0
			return nil
		}
		n = int64(f)
	}
	if n < 0 {
		n = 0
	}
	*c = Count(n)
	return nil
}

// errorResponse is the Google API error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Domain  string `json:"domain"`
			Message string `json:"message"`
		} `json:"errors"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}
