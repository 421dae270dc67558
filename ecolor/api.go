package ecolor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the vendor REST endpoint
const DefaultURL = "https://app.ecolorapi.com/"

// Device is one entry of the vendor device list
type Device struct {
	BLEAdvName   string `json:"bleAdvName"`
	Email        string `json:"email"`
	GUID         string `json:"guid"`
	HWVersion    string `json:"hwVersion"`
	IconURL      string `json:"iconUrl"`
	Identifier   string `json:"identifier"`
	Instructions string `json:"instructions"`
	LocalUUID    string `json:"localUUID"`
	MAC          string `json:"mac"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	SWVersion    string `json:"swVersion"`
	Type         string `json:"type"`
	WifiName     string `json:"wifiName"`
}

// Identity is the broker routing key for this device
func (d Device) Identity() Identity {
	return NewIdentity(d.SKU, d.Email, d.GUID)
}

type loginRequest struct {
	Cmd      string `json:"cmd"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status int `json:"status"`
	Data   struct {
		Email    string `json:"email"`
		IconURL  string `json:"icon_url"`
		MD5Email string `json:"md5_email"`
		NickName string `json:"nick_name"`
		Token    string `json:"token"`
		UserID   int    `json:"user_id"`
	} `json:"data"`
}

type deviceRequest struct {
	Cmd   string `json:"cmd"`
	Token string `json:"token"`
}

type deviceResponse struct {
	Status int `json:"status"`
	Data   struct {
		Device []Device `json:"device"`
	} `json:"data"`
}

// Client talks to the vendor REST API; it holds the token from the last Login
type Client struct {
	baseURL  string
	email    string
	password string
	token    string
	http     *http.Client
}

// NewClient returns an API client; an empty baseURL uses DefaultURL
func NewClient(baseURL, email, password string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:  baseURL,
		email:    email,
		password: password,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Login fetches a session token
func (c *Client) Login(ctx context.Context) error {
	var res loginResponse
	if err := c.post(ctx, "login", loginRequest{Cmd: "login", Email: c.email, Password: c.password}, &res); err != nil {
		return err
	}
	if res.Status != http.StatusOK {
		return fmt.Errorf("%w: login status %d", ErrAuth, res.Status)
	}
	if res.Data.Token == "" {
		return fmt.Errorf("%w: login returned no token", ErrAuth)
	}
	c.token = res.Data.Token
	return nil
}

// Devices lists the account's devices; a partial list is never returned
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: not logged in", ErrAuth)
	}
	var res deviceResponse
	if err := c.post(ctx, "devicelist", deviceRequest{Cmd: "get-device", Token: c.token}, &res); err != nil {
		return nil, err
	}
	if res.Status != http.StatusOK {
		return nil, fmt.Errorf("%w: device list status %d", ErrAuth, res.Status)
	}
	return res.Data.Device, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrAuth, path, resp.Status)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrAuth, path, err.Error())
	}
	return nil
}
