package kick

import (
	"strings"
	"time"

	"github.com/mmcdole/kickboard/internal/domain"
)

const siteURL = "https://kick.com/"

// timeLayouts are the timestamp formats the API has been observed to return
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
}

// socialKeys are copied into SocialLinks when non-empty
var socialKeys = []string{"twitter", "youtube", "instagram", "discord", "tiktok", "facebook"}

// MapChannel converts an API payload to a domain.Channel.
// lastSeen is only used when the channel is offline.
func MapChannel(username string, resp *ChannelResponse, lastSeen *time.Time, checkedAt time.Time) domain.Channel {
	ch := domain.Channel{
		Username:       username,
		DisplayName:    username,
		FollowersCount: followers(resp),
		ProfileURL:     siteURL + username,
		CheckedAt:      checkedAt,
	}

	if u := resp.User; u != nil {
		if u.Username != "" {
			ch.DisplayName = u.Username
		}
		ch.ProfilePic = u.ProfilePic
		ch.Bio = strings.TrimSpace(u.Bio)
		ch.SocialLinks = socialLinks(u)
	}
	if resp.BannerImage != nil {
		ch.BannerImage = resp.BannerImage.URL
	}

	if ls := resp.Livestream; ls != nil {
		ch.IsLive = true
		ch.LiveTitle = ls.SessionTitle
		ch.ViewerCount = ls.ViewerCount
		ch.LiveCategory = category(ls)
		ch.LiveSince = firstTime(ls.StartTime, ls.CreatedAt)
		ch.LiveURL = siteURL + username
		return ch
	}

	ch.LastStreamStart = lastSeen
	return ch
}

// NotFoundChannel is the record for a definitive 404
func NotFoundChannel(username string, checkedAt time.Time) domain.Channel {
	return domain.Channel{
		Username:    username,
		DisplayName: username,
		NotFound:    true,
		CheckedAt:   checkedAt,
	}
}

// ErrorChannel is the record for a fetch where every path failed.
// Only identity is set so no stale status can leak through.
func ErrorChannel(username string, checkedAt time.Time) domain.Channel {
	return domain.Channel{
		Username:  username,
		Error:     true,
		CheckedAt: checkedAt,
	}
}

func category(ls *Livestream) string {
	if len(ls.Categories) > 0 && ls.Categories[0].Name != "" {
		return ls.Categories[0].Name
	}
	if ls.Category != nil {
		return ls.Category.Name
	}
	return ""
}

// followers takes the first valid count, top-level fields before user fields
func followers(resp *ChannelResponse) int {
	candidates := []Count{resp.FollowersCount, resp.FollowersCountCamel}
	if resp.User != nil {
		candidates = append(candidates, resp.User.FollowersCount, resp.User.FollowersCountCamel)
	}
	for _, c := range candidates {
		if c.Valid {
			return c.Value
		}
	}
	return 0
}

func socialLinks(u *User) map[string]string {
	values := map[string]string{
		"twitter":   u.Twitter,
		"youtube":   u.YouTube,
		"instagram": u.Instagram,
		"discord":   u.Discord,
		"tiktok":    u.TikTok,
		"facebook":  u.Facebook,
	}
	var links map[string]string
	for _, k := range socialKeys {
		v := strings.TrimSpace(values[k])
		if v == "" {
			continue
		}
		if links == nil {
			links = make(map[string]string)
		}
		links[k] = v
	}
	return links
}

func sessionStart(s PastSession) *time.Time {
	return firstTime(s.StartTime, s.CreatedAt)
}

// firstTime parses the first non-empty value that matches a known layout
func firstTime(values ...string) *time.Time {
	for _, v := range values {
		if t, ok := parseTime(v); ok {
			return &t
		}
	}
	return nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
