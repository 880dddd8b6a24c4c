package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/dnscache"
)

type fakeConn struct {
	net.Conn
	addr string
}

func TestDialResolved(t *testing.T) {
	refused := errors.New("connection refused")

	tests := []struct {
		name     string
		ips      []string
		lookErr  error
		down     map[string]bool
		wantAddr string
		wantErr  bool
		dialed   int
	}{
		{"first address", []string{"10.0.0.1", "10.0.0.2"}, nil, nil, "10.0.0.1:443", false, 1},
		{"falls through to next", []string{"10.0.0.1", "10.0.0.2"}, nil, map[string]bool{"10.0.0.1:443": true}, "10.0.0.2:443", false, 2},
		{"ipv6", []string{"2001:db8::1"}, nil, nil, "[2001:db8::1]:443", false, 1},
		{"all down", []string{"10.0.0.1", "10.0.0.2"}, nil, map[string]bool{"10.0.0.1:443": true, "10.0.0.2:443": true}, "", true, 2},
		{"empty lookup", nil, nil, nil, "", true, 0},
		{"lookup fails", nil, errors.New("no such host"), nil, "", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(context.Context, string) ([]string, error) { return tt.ips, tt.lookErr }
			dialed := 0
			dial := func(_ context.Context, _, addr string) (net.Conn, error) {
				dialed++
				if tt.down[addr] {
					return nil, refused
				}
				return fakeConn{addr: addr}, nil
			}

			conn, err := dialResolved(context.Background(), "tcp", "api.couchers.org:443", lookup, dial)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if dialed != tt.dialed {
				t.Errorf("dialed %d addresses, want %d", dialed, tt.dialed)
			}
			if !tt.wantErr && conn.(fakeConn).addr != tt.wantAddr {
				t.Errorf("connected to %s, want %s", conn.(fakeConn).addr, tt.wantAddr)
			}
		})
	}
}

func TestDialResolved_EmptyLookupIsNotFound(t *testing.T) {
	lookup := func(context.Context, string) ([]string, error) { return []string{}, nil }
	dial := func(context.Context, string, string) (net.Conn, error) {
		t.Fatal("dial called without addresses")
		return nil, nil
	}

	_, err := dialResolved(context.Background(), "tcp", "api.couchers.org:443", lookup, dial)
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) || !dnsErr.IsNotFound || dnsErr.Name != "api.couchers.org" {
		t.Errorf("err = %v, want not-found DNS error for the host", err)
	}
}

func TestNewTransport_WithResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(&dnscache.Resolver{})}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get through caching resolver failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
