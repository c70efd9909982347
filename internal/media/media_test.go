package media

import "testing"

func TestPublicIDFromLocator(t *testing.T) {
	cases := []struct {
		name    string
		locator string
		want    string
	}{
		{name: "plain mp4", locator: "https://cdn.example/folder/abc123.mp4", want: "abc123"},
		{name: "multiple dots", locator: "https://cdn.example/x/y-z.9f.png", want: "y-z"},
		{name: "no extension", locator: "https://cdn.example/folder/abc123", want: "abc123"},
		{name: "no path", locator: "abc123.mp4", want: "abc123"},
		{name: "trailing slash", locator: "https://cdn.example/folder/", want: ""},
		{name: "empty", locator: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicIDFromLocator(tc.locator); got != tc.want {
				t.Fatalf("PublicIDFromLocator(%q) = %q, want %q", tc.locator, got, tc.want)
			}
		})
	}
}
