package ecolor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeAPI(t *testing.T, loginStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "body", http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/login":
			if req["cmd"] != "login" || req["email"] != "a@example.com" || req["password"] != "pw" {
				fmt.Fprint(w, `{"status":401}`)
				return
			}
			fmt.Fprintf(w, `{"status":%d,"data":{"email":"a@example.com","token":"tok"}}`, loginStatus)
		case "/devicelist":
			if req["cmd"] != "get-device" || req["token"] != "tok" {
				fmt.Fprint(w, `{"status":401}`)
				return
			}
			fmt.Fprint(w, `{"status":200,"data":{"device":[
				{"guid":"g1","sku":"H6008","email":"a@example.com","bleAdvName":"Desk","mac":"AA:BB"},
				{"guid":"g2","sku":"H6008","email":"a@example.com","name":"Hall"}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLoginAndDevices(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	c := NewClient(srv.URL, "a@example.com", "pw")

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	devs, err := c.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(devs) != 2 {
		t.Fatalf("len(Devices()) = %d, want 2", len(devs))
	}
	if devs[0].GUID != "g1" || devs[0].BLEAdvName != "Desk" || devs[0].MAC != "AA:BB" {
		t.Errorf("Devices()[0] = %+v", devs[0])
	}
	if devs[1].Name != "Hall" {
		t.Errorf("Devices()[1].Name = %q, want Hall", devs[1].Name)
	}
}

func TestClientBadPassword(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	c := NewClient(srv.URL, "a@example.com", "wrong")
	if err := c.Login(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want %v", err, ErrAuth)
	}
}

func TestClientLoginRefused(t *testing.T) {
	srv := fakeAPI(t, http.StatusForbidden)
	c := NewClient(srv.URL, "a@example.com", "pw")
	if err := c.Login(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want %v", err, ErrAuth)
	}
}

func TestClientDevicesWithoutLogin(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	c := NewClient(srv.URL, "a@example.com", "pw")
	if _, err := c.Devices(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("Devices() error = %v, want %v", err, ErrAuth)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "a@example.com", "pw")
	if err := c.Login(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want %v", err, ErrAuth)
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	if c := NewClient("", "a", "b"); c.baseURL != DefaultURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultURL)
	}
	if c := NewClient("http://localhost:1234", "a", "b"); c.baseURL != "http://localhost:1234/" {
		t.Errorf("baseURL = %q, want trailing slash", c.baseURL)
	}
}
