package tautulli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUserNotFound reports that no server user matched the requested name.
var ErrUserNotFound = errors.New("user not found")

// Users lists users known to the server (get_users).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	return call[[]User](ctx, c, "get_users", nil)
}

// UserNames lists users via get_user_names, which some Tautulli versions
// expose even when get_users is restricted. Rows carry only friendly names.
func (c *Client) UserNames(ctx context.Context) ([]User, error) {
	return call[[]User](ctx, c, "get_user_names", nil)
}

// ResolveUserID maps a username or friendly name (case insensitive) to the
// Tautulli user_id. get_users is preferred; get_user_names is the fallback
// when it fails or yields no match.
func (c *Client) ResolveUserID(ctx context.Context, name string) (int64, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	if wanted == "" {
		return 0, fmt.Errorf("%w: empty user name", ErrUserNotFound)
	}

	if users, err := c.Users(ctx); err == nil {
		for _, user := range users {
			if strings.ToLower(user.Username) == wanted || strings.ToLower(user.FriendlyName) == wanted {
				return int64(user.UserID), nil
			}
		}
	}

	users, err := c.UserNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve user %q: %w", name, err)
	}
	for _, user := range users {
		if strings.ToLower(user.FriendlyName) == wanted {
			return int64(user.UserID), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUserNotFound, name)
}
