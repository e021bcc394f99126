package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("https://www.vinmec.com/vie/benh/a")
	if !strings.HasPrefix(a, "medqa:v1:") || len(a) != len("medqa:v1:")+64 {
		t.Errorf("unexpected key %q", a)
	}
	if a == Key("https://www.vinmec.com/vie/benh/b") {
		t.Error("distinct URLs share a key")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	buf := []byte("hello")
	if err := m.Set("k", buf, 0); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'j'
	got, ok := m.Get("k")
	if !ok || string(got) != "hello" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	_ = m.Delete("k")
	if _, ok := m.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskRoundTripAndExpiry(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Hour)
	key := Key("https://example.org/")
	if err := d.Set(key, []byte("page"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok := d.Get(key)
	if !ok || string(got) != "page" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	d.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := d.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if err := d.Delete(key); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestDiskPrune(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Hour)
	_ = d.Set(Key("a"), []byte("a"), time.Minute)
	_ = d.Set(Key("b"), []byte("b"), 3*time.Hour)

	d.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := d.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if _, ok := d.Get(Key("b")); !ok {
		t.Error("live entry pruned")
	}
}

func TestLayeredPromotes(t *testing.T) {
	mem := NewMemory(time.Minute, time.Minute)
	disk := NewDisk(t.TempDir(), time.Hour)
	l := NewLayered(mem, disk)

	_ = disk.Set("k", []byte("v"), 0)
	if _, ok := mem.Get("k"); ok {
		t.Fatal("memory should start empty")
	}
	if got, ok := l.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("hit not promoted to memory")
	}
}

func TestPages(t *testing.T) {
	p := NewPages(NewMemory(time.Minute, time.Minute), 0)
	page := &Page{URL: "https://medlatec.vn/x", FinalURL: "https://medlatec.vn/x/", HTML: "<p>x</p>", FetchedAt: time.Now()}
	if err := p.Put(page); err != nil {
		t.Fatal(err)
	}
	got, ok := p.Get("https://medlatec.vn/x")
	if !ok || got.HTML != page.HTML || got.FinalURL != page.FinalURL {
		t.Errorf("Get = %+v, %v", got, ok)
	}

	var nilPages *Pages
	if _, ok := nilPages.Get("x"); ok {
		t.Error("nil cache hit")
	}
	if err := nilPages.Put(page); err != nil {
		t.Error(err)
	}
}
