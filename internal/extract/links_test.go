package extract

import "testing"

func TestResolveURL(t *testing.T) {
	base := "https://www.vinmec.com/vie/benh/"
	tests := []struct {
		href string
		want string
	}{
		{"/vie/benh/sot-xuat-huyet-4/", "https://www.vinmec.com/vie/benh/sot-xuat-huyet-4/"},
		{"hen-suyen", "https://www.vinmec.com/vie/benh/hen-suyen"},
		{"https://example.com/a#top", "https://example.com/a"},
		{"#section", ""},
		{"javascript:void(0)", ""},
		{"mailto:a@b.c", ""},
		{"ftp://example.com/x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveURL(base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestLinks(t *testing.T) {
	doc := mustDoc(t, `<ul class="disease-list">
<li><a href="/benh/a">A</a></li>
<li><a href="/benh/b">B</a></li>
<li><a href="/benh/a">A again</a></li>
<li><a>no href</a></li>
</ul><a href="/other">x</a>`)
	got := Links(doc, "https://medlatec.vn/", "ul.disease-list a")
	want := []string{"https://medlatec.vn/benh/a", "https://medlatec.vn/benh/b"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, got[i], want[i])
		}
	}
}
