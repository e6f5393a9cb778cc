package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestBraveSearchTool(t *testing.T) {
	var gotQuery, gotCount, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		gotToken = r.Header.Get("X-Subscription-Token")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"web":{"results":[
			{"title":"Frame","url":"https://brilliant.xyz/frame","description":"AI glasses"},
			{"title":"Lua","url":"https://lua.org","description":"A language"},
			{"title":"Extra","url":"https://example.com","description":"cut"}
		]}}`)
	}))
	defer srv.Close()

	tool, err := BraveSearchTool(BraveSearchConfig{APIKey: "BSA-key", Endpoint: srv.URL, Results: 2})
	if err != nil {
		t.Fatalf("BraveSearchTool: %v", err)
	}
	out, err := tool.Call(context.Background(), `{"query":"frame glasses"}`)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotQuery != "frame glasses" || gotCount != "2" || gotToken != "BSA-key" {
		t.Errorf("request q=%q count=%q token=%q", gotQuery, gotCount, gotToken)
	}
	var results []SearchResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, out)
	}
	want := []SearchResult{
		{Title: "Frame", Link: "https://brilliant.xyz/frame", Snippet: "AI glasses"},
		{Title: "Lua", Link: "https://lua.org", Snippet: "A language"},
	}
	if !slices.Equal(results, want) {
		t.Errorf("results = %+v; want %+v", results, want)
	}
}

func TestBraveSearchTool_Errors(t *testing.T) {
	if _, err := BraveSearchTool(BraveSearchConfig{}); err == nil {
		t.Error("tool created without an API key")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	tool, err := BraveSearchTool(BraveSearchConfig{APIKey: "k", Endpoint: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	tests := []string{`{"query":"x"}`, `{"query":"  "}`, `not json`}
	for _, args := range tests {
		if _, err := tool.Call(context.Background(), args); err == nil {
			t.Errorf("Call(%s) succeeded", args)
		}
	}
}

func TestBraveSearchTool_Schema(t *testing.T) {
	tool, err := BraveSearchTool(BraveSearchConfig{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	s := tool.Parameters
	if s == nil || s.Type != "object" {
		t.Fatalf("schema = %+v", s)
	}
	q := s.Properties["query"]
	if q == nil || q.Type != "string" || q.Description != "the search query" {
		t.Errorf("query schema = %+v", q)
	}
	if !slices.Contains(s.Required, "query") {
		t.Errorf("required = %v", s.Required)
	}

	p, err := tool.param()
	if err != nil {
		t.Fatalf("param: %v", err)
	}
	props, _ := p.Function.Parameters["properties"].(map[string]any)
	if _, ok := props["query"]; !ok || p.Function.Name != "brave_search" {
		t.Errorf("function = %+v", p.Function)
	}
}

func TestTimeTool_Param(t *testing.T) {
	p, err := TimeTool(nil).param()
	if err != nil {
		t.Fatal(err)
	}
	if p.Function.Parameters["type"] != "object" {
		t.Errorf("parameters = %v", p.Function.Parameters)
	}
}
