package flow

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func TestLoginPage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		respBody   string
		wantToken  string
		wantVisits int
		wantErr    bool
	}{
		{
			name:       "success stores token and opens user page",
			status:     http.StatusOK,
			respBody:   `{"access_token":"T"}`,
			wantToken:  "T",
			wantVisits: 1,
		},
		{
			name:     "rejected stores nothing and stays",
			status:   http.StatusUnauthorized,
			respBody: `{"detail":"Incorrect email or password"}`,
			wantErr:  true,
		},
		{
			name:     "not found stores nothing and stays",
			status:   http.StatusNotFound,
			respBody: `{}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newTestTab(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/login" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.respBody)
			}), nil)

			err := NewLoginPage(tab.env).Submit(context.Background(), "a@b.com", "p")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}

			reqs := tab.log.requests()
			if len(reqs) != 1 || reqs[0].Body != "email=a%40b.com&password=p" {
				t.Errorf("requests = %+v", reqs)
			}

			token, ok := tab.env.Storage.Get("access_token_godel_oidc")
			if tt.wantToken == "" && ok {
				t.Errorf("storage written with %q", token)
			}
			if tt.wantToken != "" && token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}

			visits := tab.visits()
			if len(visits) != tt.wantVisits {
				t.Fatalf("visits = %v, want %d", visits, tt.wantVisits)
			}
			if tt.wantVisits == 1 && visits[0] != tab.srv.URL+"/user/" {
				t.Errorf("visit = %q, want %s/user/", visits[0], tab.srv.URL)
			}
		})
	}
}

func TestLoginOverwritesToken(t *testing.T) {
	tab := newTestTab(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"fresh"}`)
	}), nil)
	tab.env.Storage.Set("access_token_godel_oidc", "stale")

	if err := NewLoginPage(tab.env).Submit(context.Background(), "a@b.com", "p"); err != nil {
		t.Fatal(err)
	}
	if got, _ := tab.env.Storage.Get("access_token_godel_oidc"); got != "fresh" {
		t.Errorf("token = %q, want fresh", got)
	}
}
