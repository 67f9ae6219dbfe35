package kick

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestMapChannelSocialLinks(t *testing.T) {
	tests := []struct {
		name string
		user string
		want map[string]string
	}{
		{
			name: "every network",
			user: `{"twitter":"tw","youtube":"yt","instagram":"ig","discord":"dc","tiktok":"tt","facebook":"fb"}`,
			want: map[string]string{
				"twitter": "tw", "youtube": "yt", "instagram": "ig",
				"discord": "dc", "tiktok": "tt", "facebook": "fb",
			},
		},
		{
			name: "blank values are skipped",
			user: `{"twitter":"  ","facebook":" page "}`,
			want: map[string]string{"facebook": "page"},
		},
		{
			name: "none",
			user: `{"username":"quiet"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ChannelResponse
			if err := json.Unmarshal([]byte(`{"user":`+tt.user+`}`), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			ch := MapChannel("someone", &resp, nil, time.Now())
			if !reflect.DeepEqual(ch.SocialLinks, tt.want) {
				t.Errorf("SocialLinks = %v, want %v", ch.SocialLinks, tt.want)
			}
		})
	}
}
