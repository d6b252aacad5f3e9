package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"whisperflow/internal/identity"
	"whisperflow/internal/services"
)

func TestClientLookupResolvesProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"name":"Ada Lovelace","nickname":"ada","email":"Ada@Example.com","picture":"https://cdn/avatar.png"}`))
	}))
	defer server.Close()

	client := identity.NewClient(identity.Config{BaseURL: server.URL})
	who, err := client.Lookup(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if who.Name != "Ada Lovelace" || who.Nickname != "ada" || who.AvatarURL != "https://cdn/avatar.png" {
		t.Fatalf("unexpected identity: %#v", who)
	}
	if who.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", who.Email)
	}
	if who.Token != "good-token" {
		t.Fatalf("token not carried: %q", who.Token)
	}
}

func TestClientLookupUnauthenticatedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := identity.NewClient(identity.Config{BaseURL: server.URL})
	_, err := client.Lookup(context.Background(), "stale-token")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for unauthenticated token, got %v", err)
	}
}

func TestClientLookupRejectsEmptyToken(t *testing.T) {
	client := identity.NewClient(identity.Config{BaseURL: "http://unused"})
	_, err := client.Lookup(context.Background(), "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
