package kick

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ChannelResponse is the payload of GET /api/v1/channels/{id}.
// Only the fields the dashboard reads are declared.
type ChannelResponse struct {
	// Follower count shows up under different names depending on API version
	FollowersCount      Count `json:"followers_count"`
	FollowersCountCamel Count `json:"followersCount"`

	User                *User         `json:"user"`
	Livestream          *Livestream   `json:"livestream"`
	BannerImage         *Image        `json:"banner_image"`
	PreviousLivestreams []PastSession `json:"previous_livestreams,omitempty"`
}

// User is the profile sub-object of a channel
type User struct {
	Username            string `json:"username"`
	Bio                 string `json:"bio"`
	ProfilePic          string `json:"profile_pic"`
	Twitter             string `json:"twitter"`
	YouTube             string `json:"youtube"`
	Instagram           string `json:"instagram"`
	Discord             string `json:"discord"`
	TikTok              string `json:"tiktok"`
	Facebook            string `json:"facebook"`
	FollowersCount      Count  `json:"followers_count"`
	FollowersCountCamel Count  `json:"followersCount"`
}

// Livestream is present only while the channel is broadcasting
type Livestream struct {
	SessionTitle string         `json:"session_title"`
	ViewerCount  int            `json:"viewer_count"`
	StartTime    string         `json:"start_time"`
	CreatedAt    string         `json:"created_at"`
	Category     *CategoryInfo  `json:"category,omitempty"`
	Categories   []CategoryInfo `json:"categories,omitempty"`
}

// PastSession is an entry of previous_livestreams or of the videos endpoint
type PastSession struct {
	StartTime string `json:"start_time"`
	CreatedAt string `json:"created_at"`
}

// CategoryInfo names a stream category
type CategoryInfo struct {
	Name string `json:"name"`
}

// Image wraps an image URL
type Image struct {
	URL string `json:"url"`
}

// Count is a follower count that may arrive as a number or a numeric string.
// Valid is false when the field was absent, null or not numeric.
type Count struct {
	Value int
	Valid bool
}

// UnmarshalJSON never fails so an odd count cannot reject the whole payload
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*c = Count{}
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	n := json.Number(s)
	if i, err := n.Int64(); err == nil {
		*c = Count{Value: int(i), Valid: true}
		return nil
	}
	if f, err := n.Float64(); err == nil {
		*c = Count{Value: int(f), Valid: true}
		return nil
	}
	*c = Count{}
	return nil
}
