package tautulli

import (
	"context"
	"fmt"
	"net/url"
)

// Metadata fetches item metadata for a rating key (get_metadata).
func (c *Client) Metadata(ctx context.Context, ratingKey string) (*Metadata, error) {
	params := url.Values{}
	params.Set("rating_key", ratingKey)
	md, err := call[Metadata](ctx, c, "get_metadata", params)
	if err != nil {
		return nil, err
	}
	return &md, nil
}

// ChildrenMetadata lists direct children of a rating key
// (get_children_metadata): seasons of a show, or episodes of a season.
func (c *Client) ChildrenMetadata(ctx context.Context, ratingKey, mediaType string) (*ChildrenMetadata, error) {
	params := url.Values{}
	params.Set("rating_key", ratingKey)
	params.Set("media_type", mediaType)
	children, err := call[ChildrenMetadata](ctx, c, "get_children_metadata", params)
	if err != nil {
		return nil, err
	}
	return &children, nil
}

// AvailableEpisodeCount returns the total number of episodes the library
// holds for a show. Fast path is the show metadata leaf_count; when that is
// absent the seasons are walked and their children summed. The fallback is
// best effort: a season that fails mid-walk yields the partial sum.
func (c *Client) AvailableEpisodeCount(ctx context.Context, showRatingKey string) (int, error) {
	md, err := c.Metadata(ctx, showRatingKey)
	if err == nil && md.LeafCount != nil {
		return int(*md.LeafCount), nil
	}

	seasons, err := c.ChildrenMetadata(ctx, showRatingKey, "show")
	if err != nil {
		return 0, fmt.Errorf("list seasons for show %s: %w", showRatingKey, err)
	}

	total := 0
	for _, season := range seasons.ChildrenList {
		if season.RatingKey == 0 {
			continue
		}
		episodes, err := c.ChildrenMetadata(ctx, fmt.Sprintf("%d", int64(season.RatingKey)), "season")
		if err != nil {
			return total, nil
		}
		if episodes.ChildrenCount != nil {
			total += int(*episodes.ChildrenCount)
		} else {
			total += len(episodes.ChildrenList)
		}
	}
	return total, nil
}
