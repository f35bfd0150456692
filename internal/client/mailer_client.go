package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailerClient talks to an Instantly-style cold email API (v2 endpoints).
type MailerClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMailerClient(baseURL, apiKey string) *MailerClient {
	return &MailerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *MailerClient) Configured() bool {
	return c.apiKey != ""
}

type MailerLead struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type emailVariant struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type emailStep struct {
	Type     string         `json:"type"`
	Delay    int            `json:"delay"`
	Variants []emailVariant `json:"variants"`
}

type sequence struct {
	Steps []emailStep `json:"steps"`
}

type createCampaignRequest struct {
	Name      string     `json:"name"`
	Sequences []sequence `json:"sequences"`
}

type createCampaignResponse struct {
	ID string `json:"id"`
}

type addLeadRequest struct {
	Campaign string `json:"campaign"`
	MailerLead
}

func (c *MailerClient) CreateCampaign(ctx context.Context, name, subject, body string) (string, error) {
	req := createCampaignRequest{
		Name: name,
		Sequences: []sequence{{Steps: []emailStep{{
			Type:     "email",
			Variants: []emailVariant{{Subject: subject, Body: body}},
		}}}},
	}

	var resp createCampaignResponse
	if err := c.post(ctx, "/api/v2/campaigns", req, &resp); err != nil {
		return "", fmt.Errorf("creating mailer campaign: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("creating mailer campaign: missing id in response")
	}
	return resp.ID, nil
}

func (c *MailerClient) AddLead(ctx context.Context, campaignID string, lead MailerLead) error {
	if err := c.post(ctx, "/api/v2/leads", addLeadRequest{Campaign: campaignID, MailerLead: lead}, nil); err != nil {
		return fmt.Errorf("adding mailer lead %s: %w", lead.Email, err)
	}
	return nil
}

func (c *MailerClient) Activate(ctx context.Context, campaignID string) error {
	path := "/api/v2/campaigns/" + url.PathEscape(campaignID) + "/activate"
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("activating mailer campaign: %w", err)
	}
	return nil
}

func (c *MailerClient) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode json: %w body=%q", err, string(raw))
	}
	return nil
}
