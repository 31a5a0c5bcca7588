package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "api.artic.edu/api/v1/artworks"},
			want: "catalog:api.artic.edu/api/v1/artworks",
		},
		{
			name: "page query",
			key: Key{
				Endpoint: "api.artic.edu/api/v1/artworks/",
				Query:    url.Values{"page": []string{"2"}},
			},
			want: "catalog:api.artic.edu/api/v1/artworks:page=2",
		},
		{
			name: "query names sorted",
			key: Key{
				Endpoint: "api.artic.edu/api/v1/artworks",
				Query: url.Values{
					"page":  []string{"3"},
					"limit": []string{"12"},
				},
			},
			want: "catalog:api.artic.edu/api/v1/artworks:limit=12:page=3",
		},
		{
			name: "multi-valued query joined",
			key: Key{
				Endpoint: "example.org/records",
				Query:    url.Values{"fields": []string{"id", "title"}},
			},
			want: "catalog:example.org/records:fields=id,title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyForURL(t *testing.T) {
	u, err := url.Parse("https://api.artic.edu/api/v1/artworks?page=4&limit=12")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	want := "catalog:api.artic.edu/api/v1/artworks:limit=12:page=4"
	if got := KeyForURL(u).String(); got != want {
		t.Errorf("KeyForURL().String() = %q, want %q", got, want)
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "api.artic.edu/api/v1/artworks",
		Query: url.Values{
			"page":   []string{"1"},
			"limit":  []string{"12"},
			"fields": []string{"id,title"},
		},
	}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}
