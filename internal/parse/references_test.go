package parse

import "testing"

func TestParseURL_RecordPaths(t *testing.T) {
	t.Parallel()
	links := NewLinks("")

	cases := []struct {
		name string
		url  string
		want Reference
	}{
		{
			name: "parts request update",
			url:  "https://theflip.app/parts/updates/42/",
			want: Reference{Kind: RefPartsRequestUpdate, ID: 42},
		},
		{
			name: "parts request not confused with update path",
			url:  "https://theflip.app/parts/99/",
			want: Reference{Kind: RefPartsRequest, ID: 99},
		},
		{
			name: "log entry",
			url:  "https://theflip.app/logs/77/",
			want: Reference{Kind: RefLogEntry, ID: 77},
		},
		{
			name: "ticket",
			url:  "https://theflip.app/problem-reports/55/",
			want: Reference{Kind: RefTicket, ID: 55},
		},
		{
			name: "asset",
			url:  "https://theflip.app/machines/medieval-madness/",
			want: Reference{Kind: RefAsset, AssetSlug: "medieval-madness"},
		},
		{
			name: "no trailing slash",
			url:  "https://theflip.app/problem-reports/55",
			want: Reference{Kind: RefTicket, ID: 55},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := links.ParseURL(tc.url)
			if got == nil {
				t.Fatalf("ParseURL(%q) = nil, want %+v", tc.url, tc.want)
			}
			if *got != tc.want {
				t.Fatalf("ParseURL(%q) = %+v, want %+v", tc.url, *got, tc.want)
			}
		})
	}
}

func TestParseURL_Rejects(t *testing.T) {
	t.Parallel()
	links := NewLinks("")

	cases := []struct {
		name string
		url  string
	}{
		{name: "other domain", url: "https://example.com/parts/updates/42/"},
		{name: "non-numeric id", url: "https://theflip.app/problem-reports/abc/"},
		{name: "negative id", url: "https://theflip.app/logs/-5/"},
		{name: "overflow id", url: "https://theflip.app/parts/99999999999999999999/"},
		{name: "unknown path", url: "https://theflip.app/about/"},
		{name: "root", url: "https://theflip.app/"},
		{name: "not a url", url: "godzilla"},
		{name: "wrong scheme", url: "ftp://theflip.app/logs/1/"},
		{name: "extra segments", url: "https://theflip.app/problem-reports/55/edit/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := links.ParseURL(tc.url); got != nil {
				t.Fatalf("ParseURL(%q) = %+v, want nil", tc.url, *got)
			}
		})
	}
}

func TestParseURL_CustomHost(t *testing.T) {
	t.Parallel()
	links := NewLinks("flip.example.org")

	if got := links.ParseURL("https://flip.example.org/logs/3/"); got == nil || got.Kind != RefLogEntry {
		t.Fatalf("ParseURL custom host = %+v, want log entry ref", got)
	}
	if got := links.ParseURL("https://theflip.app/logs/3/"); got != nil {
		t.Fatalf("ParseURL default host on custom links = %+v, want nil", got)
	}
}

func TestParseText_DocumentOrder(t *testing.T) {
	t.Parallel()
	links := NewLinks("")

	text := "see https://theflip.app/logs/1/ and https://example.com/x then https://theflip.app/parts/2/"
	refs := links.ParseText(text)
	if len(refs) != 2 {
		t.Fatalf("ParseText returned %d refs, want 2", len(refs))
	}
	if refs[0].Kind != RefLogEntry || refs[0].ID != 1 {
		t.Fatalf("refs[0] = %+v, want log entry #1", refs[0])
	}
	if refs[1].Kind != RefPartsRequest || refs[1].ID != 2 {
		t.Fatalf("refs[1] = %+v, want parts request #2", refs[1])
	}
}

func TestParseExplicitRefs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want []Reference
	}{
		{
			name: "pr reference",
			text: "Fixed the issue on PR #123",
			want: []Reference{{Kind: RefTicket, ID: 123}},
		},
		{
			name: "ticket word",
			text: "see ticket #9",
			want: []Reference{{Kind: RefTicket, ID: 9}},
		},
		{
			name: "parts reference",
			text: "status on parts #45?",
			want: []Reference{{Kind: RefPartsRequest, ID: 45}},
		},
		{
			name: "multiple in document order",
			text: "parts #1 relates to PR #2",
			want: []Reference{{Kind: RefPartsRequest, ID: 1}, {Kind: RefTicket, ID: 2}},
		},
		{
			name: "bare number token",
			text: "random #42 mention",
			want: nil,
		},
		{
			name: "no references",
			text: "meeting at 3pm",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseExplicitRefs(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseExplicitRefs(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ref[%d] = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}
