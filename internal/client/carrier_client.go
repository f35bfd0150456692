package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CarrierClient sends SMS through the Twilio Messages REST API.
type CarrierClient struct {
	baseURL        string
	accountSID     string
	authToken      string
	statusCallback string
	client         *http.Client
}

func NewCarrierClient(baseURL, accountSID, authToken string, timeout time.Duration) *CarrierClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CarrierClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithStatusCallback asks the carrier to post delivery updates to callbackURL.
func (c *CarrierClient) WithStatusCallback(callbackURL string) *CarrierClient {
	c.statusCallback = callbackURL
	return c
}

func (c *CarrierClient) Configured() bool {
	return c.accountSID != "" && c.authToken != ""
}

type CarrierMessage struct {
	SID    string
	Status string
}

// CarrierError is a non-2xx answer from the carrier.
type CarrierError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *CarrierError) Error() string {
	return fmt.Sprintf("carrier rejected message: status=%d code=%d message=%q", e.StatusCode, e.Code, e.Message)
}

type createMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *CarrierClient) SendSMS(ctx context.Context, to, from, body string) (CarrierMessage, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)
	if c.statusCallback != "" {
		form.Set("StatusCallback", c.statusCallback)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return CarrierMessage{}, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return CarrierMessage{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ce := &CarrierError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			ce.Code = er.Code
			ce.Message = er.Message
		}
		return CarrierMessage{}, ce
	}

	var cr createMessageResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return CarrierMessage{}, fmt.Errorf("failed to decode json: %w body=%q", err, string(raw))
	}
	if cr.SID == "" {
		return CarrierMessage{}, fmt.Errorf("missing sid in response body=%q", string(raw))
	}

	return CarrierMessage{SID: cr.SID, Status: cr.Status}, nil
}
