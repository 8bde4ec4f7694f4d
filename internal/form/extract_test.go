package form

import (
	"strings"
	"testing"
)

const loginPage = `<!DOCTYPE html>
<html><body>
<form id="auth_form">
  <input id="user" name="username">
  <input id="pass" name="password" type="password">
  <button id="butt" type="submit">Log in</button>
</form>
<div id="rq_model" hidden>
  <div class="model_elem" id="client_id">test_client</div>
  <div class="model_elem" id="response_type">code</div>
  <div class="model_elem" id="scope">None</div>
  <div class="model_elem" id="redirect_uri">https://www.google.com/</div>
  <div class="model_elem" id="nonce">None</div>
  <div class="hidden model_elem" id="state"> spaced </div>
  <div class="model_elem" id="acr_values">a &amp; <b>b</b></div>
  <div class="model_elem">no id</div>
  <div class="other" id="ignored">x</div>
</div>
<a class="provider_link" id="GitHub" href="https://github.com/login/oauth/authorize?client_id=a&amp;state=s1">GitHub</a>
<a class="provider_link" href="https://accounts.google.com/o/oauth2/v2/auth?state=s2"> Google </a>
<a class="provider_link" id="Broken">no href</a>
<a href="https://example.com/">plain link</a>
</body></html>`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(strings.NewReader(loginPage))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	want := []Field{
		{Name: "client_id", Value: "test_client"},
		{Name: "response_type", Value: "code"},
		{Name: "scope", Value: "None"},
		{Name: "redirect_uri", Value: "https://www.google.com/"},
		{Name: "nonce", Value: "None"},
		{Name: "state", Value: " spaced "},
		{Name: "acr_values", Value: "a & b"},
	}
	got := page.Model.Fields()
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if len(page.Providers) != 2 {
		t.Fatalf("got %d providers, want 2: %+v", len(page.Providers), page.Providers)
	}
	if page.Providers[0].Name != "GitHub" || page.Providers[0].URL != "https://github.com/login/oauth/authorize?client_id=a&state=s1" {
		t.Errorf("provider[0] = %+v", page.Providers[0])
	}
	if page.Providers[1].Name != "Google" {
		t.Errorf("provider[1].Name = %q, want Google", page.Providers[1].Name)
	}
}

func TestParsePageEmpty(t *testing.T) {
	page, err := ParsePage(strings.NewReader(`<html><body><p>nothing here</p></body></html>`))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if page.Model.Len() != 0 {
		t.Errorf("Model.Len() = %d, want 0", page.Model.Len())
	}
	if len(page.Providers) != 0 {
		t.Errorf("Providers = %+v, want none", page.Providers)
	}
}

func TestParsePageDuplicateID(t *testing.T) {
	page, err := ParsePage(strings.NewReader(`<div class="model_elem" id="a">1</div><div class="model_elem" id="b">2</div><div class="model_elem" id="a">3</div>`))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	got := page.Model.Fields()
	if len(got) != 2 || got[0] != (Field{Name: "a", Value: "3"}) || got[1].Name != "b" {
		t.Errorf("Fields = %+v, want a=3 in first position then b", got)
	}
}
