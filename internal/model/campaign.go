package model

import "time"

type CampaignStatus string

const (
	CampaignLaunching CampaignStatus = "launching"
	CampaignActive    CampaignStatus = "active"
)

type Campaign struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Status           CampaignStatus `db:"status" json:"status"`
	SMSEnabled       bool           `db:"sms_enabled" json:"sms_enabled"`
	VoiceEnabled     bool           `db:"voice_enabled" json:"voice_enabled"`
	EmailEnabled     bool           `db:"email_enabled" json:"email_enabled"`
	SMSTemplate      string         `db:"sms_template" json:"sms_template"`
	EmailSubject     string         `db:"email_subject" json:"email_subject"`
	EmailBody        string         `db:"email_body" json:"email_body"`
	RemoteCampaignID *string        `db:"remote_campaign_id" json:"remote_campaign_id,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

type Lead struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaign_id"`
	CandidateID string    `db:"candidate_id" json:"candidate_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CallJob struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaign_id"`
	CandidateID string    `db:"candidate_id" json:"candidate_id"`
	Phone       string    `db:"phone" json:"phone"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	LeadNew       = "new"
	CallJobQueued = "queued"
)
