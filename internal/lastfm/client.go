package lastfm

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned by calls that need a linked account.
var ErrNotAuthenticated = errors.New("not authenticated")

const authEndpoint = "https://www.last.fm/api/auth/"

// Client talks to the Last.fm web service. It implements API.
type Client struct {
	api    *lastfm.Api
	apiKey string
}

// New creates a client for the given application credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret), apiKey: apiKey}
}

// SetSessionKey links the client to an account.
func (c *Client) SetSessionKey(key string) {
	c.api.SetSession(key)
}

// IsAuthenticated reports whether a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.api.GetSessionKey() != ""
}

// GetToken starts the web authorization flow.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetAuthURL is the page where the user approves token. Last.fm redirects
// to callback afterwards when it is set.
func (c *Client) GetAuthURL(token, callback string) string {
	s := authEndpoint + "?api_key=" + url.QueryEscape(c.apiKey) + "&token=" + url.QueryEscape(token)
	if callback != "" {
		// Last.fm matches the callback verbatim.
		s += "&cb=" + callback
	}
	return s
}

// GetSession trades an approved token for a session key and links the
// client with it. username is "unknown" when the profile lookup fails.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}
	sessionKey = c.api.GetSessionKey()

	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		return "unknown", sessionKey, nil //nolint:nilerr // the session is usable without a name
	}
	return info.Name, sessionKey, nil
}

// UpdateNowPlaying announces the track being listened to.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	return c.submit("update now playing", track, func(p lastfm.P) error {
		_, err := c.api.Track.UpdateNowPlaying(p)
		return err
	})
}

// Scrobble records a finished listen at track.Timestamp.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	return c.submit("scrobble", track, func(p lastfm.P) error {
		p["timestamp"] = track.Timestamp.Unix()
		_, err := c.api.Track.Scrobble(p)
		return err
	})
}

func (c *Client) submit(op string, track ScrobbleTrack, call func(lastfm.P) error) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	p := lastfm.P{"artist": track.Artist, "track": track.Track}
	if track.Album != "" {
		p["album"] = track.Album
	}
	if track.Duration > 0 {
		p["duration"] = int(track.Duration.Seconds())
	}
	if err := call(p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
