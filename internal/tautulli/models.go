package tautulli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes Tautulli's loosely typed numeric fields, which arrive as
// numbers, numeric strings, empty strings, or null depending on server
// version and media type. Empty and null decode to zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		// Some fields arrive as stringified floats ("88.0").
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", s, err)
		}
		*f = FlexInt(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

// FlexFloat is the float counterpart of FlexInt.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// HistoryRecord is one row from get_history. Only the fields the exporter
// consumes are mapped; Tautulli returns many more.
type HistoryRecord struct {
	RatingKey            FlexInt `json:"rating_key"`
	ParentRatingKey      FlexInt `json:"parent_rating_key"`
	GrandparentRatingKey FlexInt `json:"grandparent_rating_key"`

	MediaType        string  `json:"media_type"`
	Title            string  `json:"title"`
	FullTitle        string  `json:"full_title"`
	GrandparentTitle string  `json:"grandparent_title"`
	Year             FlexInt `json:"year"`

	// Unix timestamps in seconds.
	Date    FlexInt `json:"date"`
	Started FlexInt `json:"started"`
	Stopped FlexInt `json:"stopped"`

	// PercentComplete is nullable; nil means Tautulli reported none and the
	// percent must be derived from ViewOffset/Duration.
	PercentComplete *FlexFloat `json:"percent_complete"`
	// ViewOffset is usually milliseconds while Duration is usually seconds;
	// the ingestion layer normalizes units.
	ViewOffset *FlexInt `json:"view_offset"`
	Duration   *FlexInt `json:"duration"`
}

// HistoryPage is the paginated get_history payload.
type HistoryPage struct {
	RecordsFiltered FlexInt         `json:"recordsFiltered"`
	RecordsTotal    FlexInt         `json:"recordsTotal"`
	Data            []HistoryRecord `json:"data"`
}

// User is one entry from get_users or get_user_names. get_user_names rows
// carry only FriendlyName and UserID.
type User struct {
	UserID       FlexInt `json:"user_id"`
	Username     string  `json:"username"`
	FriendlyName string  `json:"friendly_name"`
	Email        string  `json:"email"`
	IsActive     FlexInt `json:"is_active"`
}

// Metadata is the subset of get_metadata the exporter consumes.
type Metadata struct {
	RatingKey FlexInt  `json:"rating_key"`
	MediaType string   `json:"media_type"`
	Title     string   `json:"title"`
	LeafCount *FlexInt `json:"leaf_count"`
}

// ChildrenMetadata is the get_children_metadata payload used by the
// season-walk fallback when leaf_count is unavailable.
type ChildrenMetadata struct {
	ChildrenCount *FlexInt        `json:"children_count"`
	ChildrenList  []ChildMetadata `json:"children_list"`
}

// ChildMetadata is one child entry (a season under a show, or an episode
// under a season).
type ChildMetadata struct {
	RatingKey FlexInt `json:"rating_key"`
	MediaType string  `json:"media_type"`
	Title     string  `json:"title"`
}
