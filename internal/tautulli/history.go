package tautulli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// historyPageSize is the get_history page length. Tautulli caps page sizes
// server-side, so the loop also terminates on any short page.
const historyPageSize = 1000

// Media types accepted by get_history and the exporter.
const (
	MediaTypeEpisode = "episode"
	MediaTypeMovie   = "movie"
)

// History fetches the complete playback history of one user for the given
// media type, paginating until a short page. Records come back oldest first.
func (c *Client) History(ctx context.Context, userID int64, mediaType string) ([]HistoryRecord, error) {
	if mediaType != MediaTypeEpisode && mediaType != MediaTypeMovie {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	var records []HistoryRecord
	for start := 0; ; {
		page, err := c.historyPage(ctx, userID, mediaType, start, historyPageSize)
		if err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			break
		}
		records = append(records, page.Data...)
		start += len(page.Data)
		if len(page.Data) < historyPageSize {
			break
		}
	}
	return records, nil
}

func (c *Client) historyPage(ctx context.Context, userID int64, mediaType string, start, length int) (*HistoryPage, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("media_type", mediaType)
	params.Set("start", strconv.Itoa(start))
	params.Set("length", strconv.Itoa(length))
	params.Set("order_column", "date")
	params.Set("order_dir", "asc")
	// Session grouping would collapse repeated plays of the same item; the
	// aggregator needs every individual play.
	params.Set("grouping", "0")

	page, err := call[HistoryPage](ctx, c, "get_history", params)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
