package textutil

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"Song Title (Official Video)":  "song title official video",
		"  SONG   title - official VIDEO ": "song title official video",
		"Ｆｕｌｌｗｉｄｔｈ":                   "fullwidth",
		"Straße":                       "strasse",
		"":                             "",
		"!!!":                          "",
	}
	for input, want := range cases {
		if got := NormalizeTitle(input); got != want {
			t.Fatalf("NormalizeTitle(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeTitleMatchesDuplicates(t *testing.T) {
	if NormalizeTitle("Sharry Maan - Hit Song") != NormalizeTitle("sharry maan | HIT song") {
		t.Fatal("expected duplicate titles to share a key")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("  sharry   maan "); got != "Sharry Maan" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := DisplayName("   "); got != "" {
		t.Fatalf("expected empty display name, got %q", got)
	}
}
