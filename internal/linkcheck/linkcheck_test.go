package linkcheck

import "testing"

func TestValidateVideoForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw    string
		wantID string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=share", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/shorts/abc123XYZ_-", "abc123XYZ_-"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		res := Validate(tc.raw, KindVideo)
		if !res.Valid {
			t.Fatalf("expected %q valid, got error %q", tc.raw, res.Err)
		}
		if res.ResourceID != tc.wantID {
			t.Fatalf("expected id %q for %q, got %q", tc.wantID, tc.raw, res.ResourceID)
		}
		if res.Kind != KindVideo {
			t.Fatalf("expected video kind for %q, got %q", tc.raw, res.Kind)
		}
		if res.CleanURL != "https://www.youtube.com/watch?v="+tc.wantID {
			t.Fatalf("unexpected clean url %q", res.CleanURL)
		}
	}
}

func TestValidateChannelForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw    string
		wantID string
	}{
		{"https://www.youtube.com/@SomeCreator", "@SomeCreator"},
		{"https://youtube.com/channel/UCabcdefghijklmnopqrstuv", "UCabcdefghijklmnopqrstuv"},
		{"https://www.youtube.com/c/SomeBrand", "SomeBrand"},
		{"https://www.youtube.com/user/legacyname", "legacyname"},
	}
	for _, tc := range cases {
		res := Validate(tc.raw, KindChannel)
		if !res.Valid {
			t.Fatalf("expected %q valid, got error %q", tc.raw, res.Err)
		}
		if res.ResourceID != tc.wantID {
			t.Fatalf("expected id %q for %q, got %q", tc.wantID, tc.raw, res.ResourceID)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"empty", "", KindAny},
		{"whitespace", "   ", KindAny},
		{"no scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo},
		{"bad scheme", "ftp://www.youtube.com/watch?v=dQw4w9WgXcQ", KindVideo},
		{"wrong host", "https://vimeo.com/12345", KindAny},
		{"short id", "https://www.youtube.com/watch?v=short", KindVideo},
		{"channel as video", "https://www.youtube.com/@SomeCreator", KindVideo},
		{"video as channel", "https://youtu.be/dQw4w9WgXcQ", KindChannel},
		{"neither", "https://www.youtube.com/feed/history", KindAny},
	}
	for _, tc := range cases {
		res := Validate(tc.raw, tc.kind)
		if res.Valid {
			t.Fatalf("%s: expected %q to be rejected", tc.name, tc.raw)
		}
		if res.Err == "" {
			t.Fatalf("%s: expected an error message", tc.name)
		}
	}
}

func TestValidateAnyPrefersVideo(t *testing.T) {
	t.Parallel()

	res := Validate("https://youtu.be/dQw4w9WgXcQ", KindAny)
	if !res.Valid || res.Kind != KindVideo {
		t.Fatalf("expected video match first, got %+v", res)
	}

	res = Validate("https://www.youtube.com/@SomeCreator", KindAny)
	if !res.Valid || res.Kind != KindChannel {
		t.Fatalf("expected channel fallback, got %+v", res)
	}
}
