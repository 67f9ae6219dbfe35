package kick

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const liveBody = `{
	"id": 1,
	"slug": "alpha",
	"followers_count": 1500,
	"user": {
		"username": "Alpha",
		"bio": " hello ",
		"profile_pic": "https://img/alpha.png",
		"twitter": "alpha_tw",
		"youtube": "",
		"discord": "alpha#1"
	},
	"livestream": {
		"session_title": "GTA RP",
		"viewer_count": 321,
		"start_time": "2024-05-01 18:30:00",
		"categories": [{"id": 9, "name": "Grand Theft Auto V"}]
	},
	"banner_image": {"url": "https://img/banner.png"}
}`

// fakeKick serves the channel and videos endpoints from per-id bodies
type fakeKick struct {
	channels    map[string]string
	videos      map[string]string
	status      int // overrides every channel response when set
	videoCalls  atomic.Int32
	channelHits atomic.Int32
}

func (f *fakeKick) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/channels/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.channelHits.Add(1)
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		body, ok := f.channels[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("GET /api/v2/channels/{id}/videos", func(w http.ResponseWriter, r *http.Request) {
		f.videoCalls.Add(1)
		body, ok := f.videos[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, paths ...Path) *Client {
	if len(paths) == 0 {
		paths = []Path{Direct()}
	}
	return NewClient(Config{
		ChannelURL:     srv.URL + "/api/v1/channels/{id}",
		VideosURL:      srv.URL + "/api/v2/channels/{id}/videos",
		Paths:          paths,
		PathTimeout:    time.Second,
		HistoryTimeout: 500 * time.Millisecond,
	}, nil)
}

func TestFetchChannelLive(t *testing.T) {
	fake := &fakeKick{channels: map[string]string{"alpha": liveBody}}
	c := newTestClient(fake.server(t))

	ch := c.FetchChannel(context.Background(), "alpha")

	if ch.Error || ch.NotFound {
		t.Fatalf("unexpected failure: %+v", ch)
	}
	if !ch.IsLive {
		t.Fatal("expected channel to be live")
	}
	if ch.DisplayName != "Alpha" {
		t.Errorf("DisplayName = %q, want %q", ch.DisplayName, "Alpha")
	}
	if ch.LiveTitle != "GTA RP" || ch.ViewerCount != 321 {
		t.Errorf("live fields = %q/%d", ch.LiveTitle, ch.ViewerCount)
	}
	if ch.LiveCategory != "Grand Theft Auto V" {
		t.Errorf("LiveCategory = %q", ch.LiveCategory)
	}
	want := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	if ch.LiveSince == nil || !ch.LiveSince.Equal(want) {
		t.Errorf("LiveSince = %v, want %v", ch.LiveSince, want)
	}
	if ch.FollowersCount != 1500 {
		t.Errorf("FollowersCount = %d, want 1500", ch.FollowersCount)
	}
	if ch.Bio != "hello" {
		t.Errorf("Bio = %q", ch.Bio)
	}
	if ch.BannerImage != "https://img/banner.png" {
		t.Errorf("BannerImage = %q", ch.BannerImage)
	}
	if ch.LiveURL != "https://kick.com/alpha" || ch.ProfileURL != "https://kick.com/alpha" {
		t.Errorf("urls = %q %q", ch.LiveURL, ch.ProfileURL)
	}
	if len(ch.SocialLinks) != 2 || ch.SocialLinks["twitter"] != "alpha_tw" || ch.SocialLinks["discord"] != "alpha#1" {
		t.Errorf("SocialLinks = %v", ch.SocialLinks)
	}
	if fake.videoCalls.Load() != 0 {
		t.Error("history endpoint should not be queried for a live channel")
	}
}

func TestFetchChannelNotFound(t *testing.T) {
	fake := &fakeKick{channels: map[string]string{}}
	srv := fake.server(t)

	// A 404 on the first path must stop iteration
	c := newTestClient(srv, Direct(), Direct())
	ch := c.FetchChannel(context.Background(), "ghost")

	if !ch.NotFound {
		t.Fatal("expected NotFound")
	}
	if ch.Error || ch.IsLive {
		t.Errorf("NotFound record must be non-error and offline: %+v", ch)
	}
	if ch.FollowersCount != 0 || ch.SocialLinks != nil || ch.LastStreamStart != nil {
		t.Errorf("NotFound record should carry no data: %+v", ch)
	}
	if got := fake.channelHits.Load(); got != 1 {
		t.Errorf("channel requests = %d, want 1", got)
	}
}

func TestFetchChannelAllPathsFail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "malformed json", body: "{not json"},
		{name: "missing user", body: `{"id": 1, "livestream": {"viewer_count": 5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeKick{channels: map[string]string{"alpha": tt.body}, status: tt.status}
			srv := fake.server(t)
			c := newTestClient(srv, Direct(), Direct(), Direct())

			ch := c.FetchChannel(context.Background(), "alpha")

			if !ch.Error {
				t.Fatalf("expected Error, got %+v", ch)
			}
			if ch.IsLive || ch.NotFound || ch.ViewerCount != 0 || ch.LiveTitle != "" ||
				ch.DisplayName != "" || ch.SocialLinks != nil || ch.LiveSince != nil {
				t.Errorf("error record must have empty optional fields: %+v", ch)
			}
			if got := fake.channelHits.Load(); got != 3 {
				t.Errorf("channel requests = %d, want 3 (one per path)", got)
			}
		})
	}
}

func TestFetchChannelFallsBackToNextPath(t *testing.T) {
	var proxyHits atomic.Int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxyHits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	// Template proxy that forwards to the real server
	var templated atomic.Value
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		templated.Store(r.URL.Query().Get("url"))
		fmt.Fprint(w, liveBody)
	}))
	t.Cleanup(relay.Close)

	fake := &fakeKick{channels: map[string]string{"alpha": liveBody}}
	srv := fake.server(t)
	c := newTestClient(srv,
		Prefix("broken", broken.URL+"/?"),
		Template("relay", relay.URL+"/get?url={url}"),
		Direct(),
	)

	ch := c.FetchChannel(context.Background(), "alpha")

	if ch.Error || !ch.IsLive {
		t.Fatalf("expected live result via relay, got %+v", ch)
	}
	if proxyHits.Load() != 1 {
		t.Errorf("broken proxy hits = %d, want 1", proxyHits.Load())
	}
	target, _ := templated.Load().(string)
	if !strings.HasPrefix(target, srv.URL+"/api/v1/channels/alpha?_=") {
		t.Errorf("relay received target %q", target)
	}
	if fake.channelHits.Load() != 0 {
		t.Error("direct path should not be reached after relay succeeded")
	}
}

func TestFetchChannelTimeoutMovesOn(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	fake := &fakeKick{channels: map[string]string{"alpha": liveBody}}
	srv := fake.server(t)
	c := NewClient(Config{
		ChannelURL:  srv.URL + "/api/v1/channels/{id}",
		Paths:       []Path{Prefix("slow", slow.URL+"/?"), Direct()},
		PathTimeout: 50 * time.Millisecond,
	}, nil)

	start := time.Now()
	ch := c.FetchChannel(context.Background(), "alpha")

	if ch.Error {
		t.Fatalf("expected success via direct path, got %+v", ch)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %v, per-path timeout not applied", elapsed)
	}
}

func TestFetchChannelLastSeen(t *testing.T) {
	offlineInline := `{"user": {"username": "beta"}, "livestream": null,
		"previous_livestreams": [{"start_time": "2024-04-30 20:00:00"}, {"start_time": "2024-04-01 10:00:00"}]}`
	offlinePlain := `{"user": {"username": "beta"}, "livestream": null}`
	videos := `[{"start_time": "2024-04-29T12:00:00Z"}, {"start_time": "2024-04-20T12:00:00Z"}]`

	tests := []struct {
		name           string
		channel        string
		videos         string
		wantLastSeen   *time.Time
		wantVideoCalls int32
	}{
		{
			name:           "inline previous session wins",
			channel:        offlineInline,
			videos:         videos,
			wantLastSeen:   ptrTime(time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC)),
			wantVideoCalls: 0,
		},
		{
			name:           "falls back to videos endpoint",
			channel:        offlinePlain,
			videos:         videos,
			wantLastSeen:   ptrTime(time.Date(2024, 4, 29, 12, 0, 0, 0, time.UTC)),
			wantVideoCalls: 1,
		},
		{
			name:           "history failure leaves it empty",
			channel:        offlinePlain,
			wantLastSeen:   nil,
			wantVideoCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeKick{
				channels: map[string]string{"beta": tt.channel},
				videos:   map[string]string{},
			}
			if tt.videos != "" {
				fake.videos["beta"] = tt.videos
			}
			c := newTestClient(fake.server(t))

			ch := c.FetchChannel(context.Background(), "beta")

			if ch.Error || ch.IsLive {
				t.Fatalf("expected offline non-error record, got %+v", ch)
			}
			switch {
			case tt.wantLastSeen == nil && ch.LastStreamStart != nil:
				t.Errorf("LastStreamStart = %v, want nil", ch.LastStreamStart)
			case tt.wantLastSeen != nil && (ch.LastStreamStart == nil || !ch.LastStreamStart.Equal(*tt.wantLastSeen)):
				t.Errorf("LastStreamStart = %v, want %v", ch.LastStreamStart, tt.wantLastSeen)
			}
			if got := fake.videoCalls.Load(); got != tt.wantVideoCalls {
				t.Errorf("video calls = %d, want %d", got, tt.wantVideoCalls)
			}
		})
	}
}

func TestFollowersFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "top-level snake case",
			body: `{"followers_count": 10, "followersCount": 20, "user": {"followers_count": 30}}`,
			want: 10,
		},
		{
			name: "top-level camel case",
			body: `{"followersCount": 20, "user": {"followers_count": 30}}`,
			want: 20,
		},
		{
			name: "user numeric string",
			body: `{"user": {"followers_count": "1234"}}`,
			want: 1234,
		},
		{
			name: "user camel case after invalid values",
			body: `{"followers_count": "n/a", "user": {"followers_count": null, "followersCount": 7}}`,
			want: 7,
		},
		{
			name: "none present",
			body: `{"user": {}}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeKick{channels: map[string]string{"gamma": tt.body}}
			c := newTestClient(fake.server(t))
			c.videosURL = ""

			ch := c.FetchChannel(context.Background(), "gamma")
			if ch.Error {
				t.Fatalf("unexpected error record")
			}
			if ch.FollowersCount != tt.want {
				t.Errorf("FollowersCount = %d, want %d", ch.FollowersCount, tt.want)
			}
		})
	}
}

func TestPathURL(t *testing.T) {
	target := "https://kick.com/api/v1/channels/a?_=1"
	tests := []struct {
		path Path
		want string
	}{
		{Direct(), target},
		{Prefix("corsproxy", "https://corsproxy.io/?"), "https://corsproxy.io/?https%3A%2F%2Fkick.com%2Fapi%2Fv1%2Fchannels%2Fa%3F_%3D1"},
		{Template("allorigins", "https://api.allorigins.win/raw?url={url}"), "https://api.allorigins.win/raw?url=https%3A%2F%2Fkick.com%2Fapi%2Fv1%2Fchannels%2Fa%3F_%3D1"},
	}
	for _, tt := range tests {
		t.Run(string(tt.path.Kind), func(t *testing.T) {
			if got := tt.path.URL(target); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
