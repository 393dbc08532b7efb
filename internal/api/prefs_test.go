package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/prefs/internal/backend"
	"github.com/kalambet/prefs/internal/prefs"
)

const testToken = "test-token-12345"

func newTestStore(t *testing.T) *prefs.Locked {
	t.Helper()
	s, err := prefs.Open(backend.NewMemory(), prefs.WithBootstrap(false))
	if err != nil {
		t.Fatalf("prefs.Open failed: %v", err)
	}
	l := prefs.NewLocked(s)
	t.Cleanup(func() { l.Close() })
	return l
}

func setupHandler(t *testing.T) (http.Handler, *prefs.Locked) {
	t.Helper()
	store := newTestStore(t)
	return NewHandler(Deps{Store: store, Token: testToken}), store
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth_NoAuth(t *testing.T) {
	h, _ := setupHandler(t)
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestAuth_Required(t *testing.T) {
	h, _ := setupHandler(t)

	for _, token := range []string{"", "wrong"} {
		rr := serve(h, authReq(http.MethodGet, "/prefs", "", token))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want 401", token, rr.Code)
		}
	}
}

func TestPutAndGetPref(t *testing.T) {
	h, store := setupHandler(t)

	rr := serve(h, authReq(http.MethodPut, "/prefs/score", `{"type":"Int","value":42}`, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d; body = %s", rr.Code, rr.Body.String())
	}

	v, err := store.Get("score")
	if err != nil || !v.Equal(prefs.Int(42)) {
		t.Fatalf("stored value = %v, %v", v, err)
	}

	rr = serve(h, authReq(http.MethodGet, "/prefs/score", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d; body = %s", rr.Code, rr.Body.String())
	}
	var rec prefs.Record
	if err := json.NewDecoder(rr.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Key != "score" || !rec.Value.Equal(prefs.Int(42)) {
		t.Errorf("record = %+v", rec)
	}
}

func TestPutPref_InvalidBody(t *testing.T) {
	h, _ := setupHandler(t)

	for _, body := range []string{`not json`, `{"type":"Int","value":"abc"}`, `{"type":"Color","value":"red"}`} {
		rr := serve(h, authReq(http.MethodPut, "/prefs/k", body, testToken))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestPutPref_InvalidKey(t *testing.T) {
	h, _ := setupHandler(t)
	rr := serve(h, authReq(http.MethodPut, "/prefs/a,b", `{"type":"String","value":"x"}`, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body = %s", rr.Code, rr.Body.String())
	}
}

func TestDeletePref_ReservedKey(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("a", prefs.Int(1))

	for _, key := range []string{prefs.IndexKey, prefs.Placeholder} {
		rr := serve(h, authReq(http.MethodDelete, "/prefs/"+key, "", testToken))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("DELETE /prefs/%s status = %d, want 400", key, rr.Code)
		}
	}
	got, _ := store.ListKeys()
	if strings.Join(got, ",") != "a" {
		t.Errorf("keys after reserved deletes = %v, want [a]", got)
	}
}

func TestGetPref_NotFound(t *testing.T) {
	h, _ := setupHandler(t)
	rr := serve(h, authReq(http.MethodGet, "/prefs/missing", "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestListAndDelete(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("a", prefs.Int(1))
	store.SaveTyped("b", prefs.String("x"))

	rr := serve(h, authReq(http.MethodGet, "/prefs", "", testToken))
	var keys []string
	json.NewDecoder(rr.Body).Decode(&keys)
	if strings.Join(keys, ",") != "a,b" {
		t.Fatalf("keys = %v", keys)
	}

	rr = serve(h, authReq(http.MethodDelete, "/prefs/a", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rr.Code)
	}
	got, _ := store.ListKeys()
	if strings.Join(got, ",") != "b" {
		t.Errorf("keys after delete = %v", got)
	}
}

func TestDefaultAndReset(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("volume", prefs.Float(0.9))

	rr := serve(h, authReq(http.MethodPut, "/prefs/volume/default", `{"type":"Float","value":0.5}`, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT default status = %d; body = %s", rr.Code, rr.Body.String())
	}

	rr = serve(h, authReq(http.MethodPost, "/prefs/volume/reset", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if v, _ := store.Get("volume"); !v.Equal(prefs.Float(0.5)) {
		t.Errorf("volume after reset = %v", v)
	}

	rr = serve(h, authReq(http.MethodPost, "/prefs/other/reset", "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Errorf("reset without default: status = %d, want 404", rr.Code)
	}
}

func TestResetAll(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("a", prefs.Int(5))
	store.RegisterDefault("a", prefs.Int(1))
	store.SaveTyped("b", prefs.Int(5))

	rr := serve(h, authReq(http.MethodPost, "/reset", "", testToken))
	var resp map[string]int
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["reset"] != 1 {
		t.Errorf("reset = %d, want 1", resp["reset"])
	}
	if v, _ := store.Get("a"); !v.Equal(prefs.Int(1)) {
		t.Errorf("a = %v", v)
	}
}

func TestExportImport(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("a", prefs.Int(5))
	store.RegisterDefault("a", prefs.Int(1))

	rr := serve(h, authReq(http.MethodGet, "/export", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	exported := rr.Body.String()

	h2, store2 := setupHandler(t)
	rr = serve(h2, authReq(http.MethodPost, "/import", exported, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if v, _ := store2.Get("a"); !v.Equal(prefs.Int(5)) {
		t.Errorf("imported a = %v", v)
	}
	if def, ok, _ := store2.Default("a"); !ok || def != "1" {
		t.Errorf("imported default = %q, %v", def, ok)
	}
}

func TestEvents_StreamsChanges(t *testing.T) {
	h, store := setupHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": subscribed") {
		t.Fatalf("first line = %q, %v", line, err)
	}

	if err := store.SaveTyped("theme", prefs.String("dark")); err != nil {
		t.Fatal(err)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var c prefs.Change
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &c); err != nil {
			t.Fatalf("decoding change: %v", err)
		}
		if c.Key != "theme" || !c.Value.Equal(prefs.String("dark")) {
			t.Errorf("change = %+v", c)
		}
		return
	}
}

func TestExportImportYAML(t *testing.T) {
	h, store := setupHandler(t)
	store.SaveTyped("launches", prefs.Int(3))

	rr := serve(h, authReq(http.MethodGet, "/export?format=yaml", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	exported := rr.Body.String()
	if !strings.Contains(exported, "key: launches") {
		t.Errorf("yaml export = %s", exported)
	}

	h2, store2 := setupHandler(t)
	req := authReq(http.MethodPost, "/import", exported, testToken)
	req.Header.Set("Content-Type", "application/yaml")
	rr = serve(h2, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if v, _ := store2.Get("launches"); !v.Equal(prefs.Int(3)) {
		t.Errorf("imported launches = %v", v)
	}
}
