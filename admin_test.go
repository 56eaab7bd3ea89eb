package autoblog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"

	"github.com/eringen/autoblog/trends"
)

const (
	testPassword = "correct horse"
	testCSRF     = "test-csrf-token"
)

// testPanel drives the control panel through Echo with a cookie jar.
type testPanel struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
	gen     *fakeGenerator
}

func setupTestPanel(t *testing.T) *testPanel {
	t.Helper()
	dir := t.TempDir()
	gen := &fakeGenerator{}
	cfg := Config{
		Name:          "Test Blog",
		DatabasePath:  filepath.Join(dir, "data", "blogs.db"),
		OutputDir:     filepath.Join(dir, "generated_blogs"),
		ProcessedPath: filepath.Join(dir, "processed_trends.json"),
		AdminPassword: testPassword,
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
	app := New(cfg,
		WithSourceFactory(func(Config, RunConfig) (trends.Source, error) {
			return &fakeSource{topics: []string{"Quantum chips hit market"}}, nil
		}),
		WithGeneratorFactory(func(context.Context, RunConfig) (ContentGenerator, error) {
			return gen, nil
		}),
		WithModelLister(func(_ context.Context, provider, _ string) ([]string, error) {
			return []string{provider + "-pro", provider + "-lite"}, nil
		}),
	)
	if err := app.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return &testPanel{t: t, app: app, cookies: make(map[string]*http.Cookie), gen: gen}
}

func (p *testPanel) do(req *http.Request) *httptest.ResponseRecorder {
	p.t.Helper()
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: testCSRF})
	for _, c := range p.cookies {
		if c.Name != "_csrf" {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	p.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(p.cookies, c.Name)
			continue
		}
		p.cookies[c.Name] = c
	}
	return rec
}

func (p *testPanel) get(path string) *httptest.ResponseRecorder {
	return p.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (p *testPanel) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", testCSRF)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return p.do(req)
}

func (p *testPanel) login() {
	p.t.Helper()
	rec := p.post("/admin/login/", url.Values{"password": {testPassword}})
	if rec.Code != http.StatusSeeOther {
		p.t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if _, ok := p.cookies[sessionName]; !ok {
		p.t.Fatal("login did not set a session cookie")
	}
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAdminShowsLoginWhenSignedOut(t *testing.T) {
	p := setupTestPanel(t)
	rec := p.get("/admin/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if doc.Find(`form[action="/admin/login/"] input[name="password"]`).Length() != 1 {
		t.Error("login form missing")
	}
	if doc.Find("section.available").Length() != 0 {
		t.Error("dashboard should not render before login")
	}
}

func TestRootRedirects(t *testing.T) {
	p := setupTestPanel(t)
	rec := p.get("/")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Errorf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGatedRoutesRequireLogin(t *testing.T) {
	p := setupTestPanel(t)
	for _, path := range []string{"/admin/demo/", "/admin/generate/", "/admin/download/", "/admin/settings/"} {
		rec := p.post(path, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
		}
	}
	for _, path := range []string{"/admin/preview/1/", "/admin/post/1/download/", "/admin/sitemap.xml"} {
		rec := p.get(path)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
		}
	}
	posts, _ := p.app.Store.ListPosts(AllPosts)
	if len(posts) != 0 {
		t.Error("signed-out requests must not create posts")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	p := setupTestPanel(t)
	rec := p.post("/admin/login/", url.Values{"password": {"nope"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect password") {
		t.Error("expected incorrect password message")
	}
	if _, ok := p.cookies[sessionName]; ok {
		t.Error("failed login should not authenticate")
	}
}

func TestLoginRateLimited(t *testing.T) {
	p := setupTestPanel(t)
	for i := 0; i < 5; i++ {
		p.post("/admin/login/", url.Values{"password": {"nope"}})
	}
	rec := p.post("/admin/login/", url.Values{"password": {testPassword}})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestPostWithoutCSRFRejected(t *testing.T) {
	p := setupTestPanel(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("password=x"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	p.app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	p.post("/admin/logout/", nil)
	rec := p.post("/admin/demo/", nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status after logout = %d, want 303", rec.Code)
	}
}

func TestDemoPreviewAndBundle(t *testing.T) {
	p := setupTestPanel(t)
	p.login()

	rec := p.get("/admin/")
	if !strings.Contains(rec.Body.String(), "No blogs available for download") {
		t.Error("expected empty state before demo")
	}

	rec = p.post("/admin/demo/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("demo status = %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if got := doc.Find("p.message").Text(); got != "Demo blogs created successfully!" {
		t.Errorf("message = %q", got)
	}
	boxes := doc.Find(`#bundle input[name="ids"]`)
	if boxes.Length() != len(DemoTopics) {
		t.Fatalf("checkboxes = %d, want %d", boxes.Length(), len(DemoTopics))
	}
	if doc.Find("iframe[sandbox]").Length() != len(DemoTopics) {
		t.Error("each post should have a sandboxed preview")
	}

	first, _ := boxes.First().Attr("value")
	rec = p.get("/admin/preview/" + first + "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Top 10 Tech Trends to Watch in 2025") {
		t.Errorf("preview status = %d", rec.Code)
	}
	rec = p.get("/admin/post/" + first + "/download/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("single download status = %d", rec.Code)
	}
	if p.get("/admin/preview/9999/").Code != http.StatusNotFound {
		t.Error("unknown post should be 404")
	}
	if p.get("/admin/preview/abc/").Code != http.StatusNotFound {
		t.Error("bad id should be 404")
	}

	form := url.Values{}
	boxes.Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		form.Add("ids", v)
	})
	rec = p.post("/admin/download/", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("bundle status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "blogs.zip") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if n := len(zipEntries(t, rec.Body)); n != len(DemoTopics) {
		t.Errorf("zip entries = %d", n)
	}

	doc = parseDoc(t, p.get("/admin/"))
	if doc.Find(`#bundle`).Length() != 0 {
		t.Error("all posts should have moved to downloaded")
	}
	if doc.Find("section.downloaded li").Length() != len(DemoTopics) {
		t.Errorf("downloaded list = %d", doc.Find("section.downloaded li").Length())
	}
}

func TestBundleRequiresSelection(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	rec := p.post("/admin/download/", nil)
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "Select+at+least+one") {
		t.Errorf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGenerateNeedsKeys(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	rec := p.post("/admin/generate/", nil)
	if !strings.Contains(rec.Body.String(), "Please enter both API keys in the sidebar.") {
		t.Error("expected missing keys message")
	}
	if len(p.gen.calls) != 0 {
		t.Error("generator should not be called without keys")
	}
}

func TestSettingsAndGenerate(t *testing.T) {
	p := setupTestPanel(t)
	p.login()

	rec := p.post("/admin/settings/", url.Values{"news_key": {"news"}, "llm_key": {"llm"}, "provider": {"openai"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("settings status = %d", rec.Code)
	}

	rec = p.post("/admin/models/", nil)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "Found+2+available+models.") {
		t.Errorf("models location = %q", loc)
	}
	doc := parseDoc(t, p.get("/admin/"))
	if got, _ := doc.Find(`select#model option[selected]`).Attr("value"); got != "openai-pro" {
		t.Errorf("selected model = %q", got)
	}

	rec = p.post("/admin/generate/", nil)
	doc = parseDoc(t, rec)
	if got := doc.Find("p.message").Text(); got != "Generated 1 new blogs." {
		t.Errorf("message = %q", got)
	}
	if !strings.Contains(doc.Find("section.report").Text(), "quantum-chips-hit-market.html") {
		t.Error("report should list the created file")
	}

	rec = p.post("/admin/generate/", nil)
	doc = parseDoc(t, rec)
	if got := doc.Find("p.message").Text(); got != "Generated 0 new blogs." {
		t.Errorf("second run message = %q", got)
	}
	if len(p.gen.calls) != 1 {
		t.Errorf("generator calls = %d, want 1", len(p.gen.calls))
	}
}

func TestGenerateCorruptProcessedRecord(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	if err := os.WriteFile(p.app.Config.ProcessedPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	p.post("/admin/settings/", url.Values{"news_key": {"news"}, "llm_key": {"llm"}})

	rec := p.post("/admin/generate/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	msg := parseDoc(t, rec).Find("p.message").Text()
	if !strings.HasPrefix(msg, "Error loading processed trends: ") {
		t.Errorf("message = %q", msg)
	}
	if len(p.gen.calls) != 0 {
		t.Error("generator should not run")
	}
}

func TestSettingsRejectsUnknownProvider(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	rec := p.post("/admin/settings/", url.Values{"provider": {"mystery"}})
	if !strings.Contains(rec.Header().Get("Location"), "Unknown+provider") {
		t.Errorf("location = %q", rec.Header().Get("Location"))
	}
}

func TestHealthz(t *testing.T) {
	p := setupTestPanel(t)
	rec := p.get("/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if _, ok := stats["posts_available"]; !ok {
		t.Error("posts_available missing")
	}
}

func TestSitemapAndFeed(t *testing.T) {
	p := setupTestPanel(t)
	p.login()
	p.post("/admin/demo/", nil)

	rec := p.get("/admin/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	if n := strings.Count(rec.Body.String(), "<loc>"); n != len(DemoTopics) {
		t.Errorf("sitemap urls = %d", n)
	}

	rec = p.get("/admin/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "rss") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if n := strings.Count(rec.Body.String(), "<item>"); n != len(DemoTopics) {
		t.Errorf("feed items = %d", n)
	}
}

func TestNotFoundPage(t *testing.T) {
	p := setupTestPanel(t)
	rec := p.get("/nowhere/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
