package adapters

import (
	"strings"
	"testing"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

func TestRegistryFindAdapter(t *testing.T) {
	r := NewRegistry(extract.NewSegmenter())
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.vinmec.com/vie/benh/hen-suyen-3012", "vinmec"},
		{"https://medlatec.vn/tu-dien-benh-ly/lao-phoi", "medlatec"},
		{"https://medlineplus.gov/ency/article/000077.htm", "medlineplus"},
		{"https://example.org/health/flu", "generic"},
		{"https://notvinmec.com.evil.io/x", "generic"},
	}
	for _, tt := range tests {
		if got := r.FindAdapter(tt.url).Name(); got != tt.want {
			t.Errorf("FindAdapter(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"vinmec", "Medlatec", "medlineplus", "generic"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := r.Lookup("wikipedia"); ok {
		t.Error("unexpected adapter")
	}
	if got := strings.Join(r.Names(), ","); got != "vinmec,medlatec,medlineplus" {
		t.Errorf("Names() = %s", got)
	}
}

func TestIndexers(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range r.Names() {
		a, _ := r.Lookup(name)
		idx, ok := a.(Indexer)
		if !ok {
			t.Fatalf("%s is not an Indexer", name)
		}
		if len(idx.IndexURLs()) == 0 {
			t.Errorf("%s has no index urls", name)
		}
	}
	v := NewVinmecAdapter(nil).IndexURLs()
	if len(v) != 26 || v[0] != "https://www.vinmec.com/vie/tra-cuu-benh/a" {
		t.Errorf("vinmec index = %v", v[:1])
	}
	m := NewMedlinePlusAdapter().IndexURLs()
	if m[25] != "https://medlineplus.gov/ency/encyclopedia_Z.htm" {
		t.Errorf("medlineplus index = %s", m[25])
	}
}

func sectionByCategory(p *Page, c model.Category) *model.Section {
	for i := range p.Sections {
		if p.Sections[i].Category == c {
			return &p.Sections[i]
		}
	}
	return nil
}

var long = strings.Repeat("Hen suyễn là bệnh viêm mạn tính đường hô hấp. ", 6)

func TestVinmecExtract(t *testing.T) {
	page := `<html><head><title>Hen suyễn: Nguyên nhân, triệu chứng | Vinmec</title></head><body>
<div class="content">
<h2>Tổng quan bệnh Hen suyễn</h2>
<p>` + long + `</p>
<p>Xem thêm: Hen suyễn ở trẻ em</p>
<h2>Nguyên nhân</h2>
<p>Do cơ địa dị ứng và yếu tố môi trường.</p>
<h3>Triệu chứng</h3>
<ul><li>Khó thở</li><li>Khò khè</li></ul>
</div></body></html>`

	p, out := NewVinmecAdapter(nil).Extract(page, "https://www.vinmec.com/vie/benh/hen-suyen")
	if !out.OK() {
		t.Fatalf("unexpected skip: %+v", out)
	}
	if p.Meta.Title != "Hen suyễn" {
		t.Errorf("title = %q", p.Meta.Title)
	}
	if p.Meta.Source != "vinmec" {
		t.Errorf("source = %q", p.Meta.Source)
	}
	ov := sectionByCategory(p, model.CategoryOverview)
	if ov == nil || strings.Contains(ov.Text, "Xem thêm") {
		t.Fatalf("overview = %+v", ov)
	}
	if s := sectionByCategory(p, model.CategorySymptoms); s == nil || s.Text != "Khó thở Khò khè" {
		t.Errorf("symptoms = %+v", s)
	}
}

func TestVinmecExtractH1Title(t *testing.T) {
	page := `<html><body><h1>Viêm gan B</h1><div><h2>Điều trị</h2><p>` + long + `</p></div></body></html>`
	p, out := NewVinmecAdapter(nil).Extract(page, "https://www.vinmec.com/vie/benh/viem-gan-b")
	if !out.OK() {
		t.Fatalf("unexpected skip: %+v", out)
	}
	if p.Meta.Title != "Viêm gan B" {
		t.Errorf("title = %q", p.Meta.Title)
	}
}

func TestVinmecNoContent(t *testing.T) {
	_, out := NewVinmecAdapter(nil).Extract(`<html><body><p>404</p></body></html>`, "https://www.vinmec.com/x")
	if out.Reason != model.SkipNoContent {
		t.Errorf("reason = %q", out.Reason)
	}
}

func TestVinmecArticleLinks(t *testing.T) {
	a := NewVinmecAdapter(nil)
	doc, _ := a.ParseHTML(`<a href="/vie/benh/hen-suyen-1">x</a>
<a href="/vie/tra-cuu-benh/b">b</a><a href="/vie/bai-viet/abc">y</a>`)
	got := a.ArticleLinks(doc, "https://www.vinmec.com/vie/tra-cuu-benh/a")
	if len(got) != 1 || got[0] != "https://www.vinmec.com/vie/benh/hen-suyen-1" {
		t.Errorf("links = %v", got)
	}
}

func TestMedlatecExtract(t *testing.T) {
	page := `<html><body><h1 class="page-title">Lao phổi : Nguyên nhân và cách điều trị</h1>
<div class="description">
<h2>Lao phổi là gì?</h2>
<p>Lao phổi là bệnh truyền nhiễm do vi khuẩn lao.</p>
<img src="a.jpg"><p style="text-align: center">Ảnh minh họa</p>
<h2>Triệu chứng</h2>
<h3>Giai đoạn sớm</h3>
<p>Ho kéo dài trên 3 tuần.</p>
<div style="background:#eee"><strong>Tài liệu tham khảo</strong><p>WHO 2020</p></div>
<div style="background:#eee"><strong>Lưu ý</strong><p>Đeo khẩu trang</p></div>
</div></body></html>`

	p, out := NewMedlatecAdapter(nil).Extract(page, "https://medlatec.vn/tu-dien-benh-ly/lao-phoi")
	if !out.OK() {
		t.Fatalf("unexpected skip: %+v", out)
	}
	if p.Meta.Title != "Lao phổi" {
		t.Errorf("title = %q", p.Meta.Title)
	}
	if len(p.Sections) != 2 {
		t.Fatalf("sections = %+v", p.Sections)
	}
	if p.Sections[0].Category != model.CategoryOverview || strings.Contains(p.Sections[0].Text, "minh họa") {
		t.Errorf("overview = %+v", p.Sections[0])
	}
	want := "Giai đoạn sớm\nHo kéo dài trên 3 tuần.\nĐeo khẩu trang"
	if p.Sections[1].Category != model.CategorySymptoms || p.Sections[1].Text != want {
		t.Errorf("symptoms = %q", p.Sections[1].Text)
	}
}

func TestMedlatecNoDescription(t *testing.T) {
	_, out := NewMedlatecAdapter(nil).Extract(`<html><body><h2>Triệu chứng</h2><p>x</p></body></html>`, "https://medlatec.vn/x")
	if out.Reason != model.SkipNoContent {
		t.Errorf("reason = %q", out.Reason)
	}
}

func TestMedlinePlusExtract(t *testing.T) {
	page := `<html><body>
<div class="page-title"><h1>Asthma</h1></div>
<div id="ency_summary"><p>Asthma is a disease that causes the airways to swell.</p></div>
<div class="section"><div class="section-title"><h2>Symptoms</h2></div>
<div class="section-body"><p>Symptoms include:</p><ul><li>Cough</li><li>Wheezing</li></ul></div></div>
<div class="section"><div class="section-title"><h2>Treatment</h2></div>
<div class="section-body"><p>Avoid triggers.</p></div></div>
<div class="section"><div class="section-body"><p>untitled</p></div></div>
</body></html>`

	p, out := NewMedlinePlusAdapter().Extract(page, "https://medlineplus.gov/ency/article/000141.htm")
	if !out.OK() {
		t.Fatalf("unexpected skip: %+v", out)
	}
	if p.Meta.Title != "Asthma" {
		t.Errorf("title = %q", p.Meta.Title)
	}
	if len(p.Sections) != 3 {
		t.Fatalf("sections = %+v", p.Sections)
	}
	if p.Sections[0].Category != model.CategoryOverview {
		t.Errorf("first = %+v", p.Sections[0])
	}
	if want := "Symptoms include:\n• Cough\n• Wheezing"; p.Sections[1].Text != want {
		t.Errorf("symptoms = %q", p.Sections[1].Text)
	}
	if p.Sections[2].Category != model.CategoryTreatment {
		t.Errorf("third = %+v", p.Sections[2])
	}
}

func TestMedlinePlusNoContent(t *testing.T) {
	_, out := NewMedlinePlusAdapter().Extract(`<html><body><p>gone</p></body></html>`, "https://medlineplus.gov/x")
	if out.OK() {
		t.Error("expected skip")
	}
}

func TestGenericExtract(t *testing.T) {
	para := strings.Repeat("Influenza is a contagious respiratory illness caused by influenza viruses. ", 8)
	page := `<html><head><title>Flu facts</title></head><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article>
<h1>Flu facts</h1>
<p>` + para + `</p>
<h2>Symptoms</h2>
<p>` + para + `</p>
<h2>Prevention</h2>
<p>` + para + `</p>
</article>
<footer>Copyright</footer>
</body></html>`

	p, out := NewGenericAdapter(nil).Extract(page, "https://example.org/flu")
	if !out.OK() {
		t.Fatalf("unexpected skip: %+v", out)
	}
	if p.Meta.Source != "generic" {
		t.Errorf("source = %q", p.Meta.Source)
	}
	if sectionByCategory(p, model.CategorySymptoms) == nil {
		t.Errorf("no symptoms section in %+v", p.Sections)
	}
}
