package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

func (s *Store) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO campaigns
			(id, name, status, sms_enabled, voice_enabled, email_enabled, sms_template,
			 email_subject, email_body, remote_campaign_id, created_at, updated_at)
		VALUES
			(:id, :name, :status, :sms_enabled, :voice_enabled, :email_enabled, :sms_template,
			 :email_subject, :email_body, :remote_campaign_id, :created_at, :updated_at)
	`, c)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

func (s *Store) InsertLeads(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO leads (id, campaign_id, candidate_id, status, created_at)
		VALUES (:id, :campaign_id, :candidate_id, :status, :created_at)
	`, leads)
	if err != nil {
		return fmt.Errorf("inserting leads: %w", err)
	}
	return nil
}

func (s *Store) InsertCallJobs(ctx context.Context, jobs []model.CallJob) error {
	if len(jobs) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO call_jobs (id, campaign_id, candidate_id, phone, status, created_at)
		VALUES (:id, :campaign_id, :candidate_id, :phone, :status, :created_at)
	`, jobs)
	if err != nil {
		return fmt.Errorf("inserting call jobs: %w", err)
	}
	return nil
}

func (s *Store) SetRemoteCampaign(ctx context.Context, campaignID, remoteID string) error {
	return s.execOne(ctx, `
		UPDATE campaigns SET remote_campaign_id = ?, updated_at = ? WHERE id = ?
	`, remoteID, time.Now().UTC(), campaignID)
}

func (s *Store) SetCampaignStatus(ctx context.Context, campaignID string, status model.CampaignStatus) error {
	return s.execOne(ctx, `
		UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), campaignID)
}

func (s *Store) FindCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := s.get(ctx, &c, `
		SELECT id, name, status, sms_enabled, voice_enabled, email_enabled, sms_template,
		       email_subject, email_body, remote_campaign_id, created_at, updated_at
		FROM campaigns WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CountCallJobs(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := s.get(ctx, &n, `SELECT COUNT(*) FROM call_jobs WHERE campaign_id = ?`, campaignID)
	return n, err
}

func (s *Store) CountLeads(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := s.get(ctx, &n, `SELECT COUNT(*) FROM leads WHERE campaign_id = ?`, campaignID)
	return n, err
}
