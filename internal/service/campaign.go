package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/metrics"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
)

type Mailer interface {
	Configured() bool
	CreateCampaign(ctx context.Context, name, subject, body string) (string, error)
	AddLead(ctx context.Context, campaignID string, lead client.MailerLead) error
	Activate(ctx context.Context, campaignID string) error
}

type SMSSender interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
}

type LaunchRequest struct {
	Name         string
	CandidateIDs []string
	SMS          bool
	Voice        bool
	Email        bool
	SMSTemplate  string
	EmailSubject string
	EmailBody    string
}

type ChannelResult struct {
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

type LaunchResult struct {
	CampaignID       string        `json:"campaign_id"`
	Leads            int           `json:"leads"`
	RemoteCampaignID string        `json:"remote_campaign_id,omitempty"`
	SMS              ChannelResult `json:"sms"`
	Voice            ChannelResult `json:"voice"`
	Email            ChannelResult `json:"email"`
}

// Orchestrator fans a campaign launch out across channels. No step is rolled back
// when a later one fails; the result says what each channel achieved.
type Orchestrator struct {
	campaigns   repo.CampaignRepository
	candidates  repo.CandidateDirectory
	sms         SMSSender
	mailer      Mailer
	concurrency int
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewOrchestrator(campaigns repo.CampaignRepository, candidates repo.CandidateDirectory, sms SMSSender, mailer Mailer, concurrency int, m *metrics.Metrics) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		campaigns:   campaigns,
		candidates:  candidates,
		sms:         sms,
		mailer:      mailer,
		concurrency: concurrency,
		metrics:     m,
		now:         time.Now,
	}
}

func (req LaunchRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return invalid("name is required")
	case len(req.CandidateIDs) == 0:
		return invalid("candidate_ids is required")
	case !req.SMS && !req.Voice && !req.Email:
		return invalid("at least one channel must be enabled")
	case req.SMS && strings.TrimSpace(req.SMSTemplate) == "":
		return invalid("sms_template is required when sms is enabled")
	case req.Email && (strings.TrimSpace(req.EmailSubject) == "" || strings.TrimSpace(req.EmailBody) == ""):
		return invalid("email_subject and email_body are required when email is enabled")
	}
	return nil
}

func (o *Orchestrator) Launch(ctx context.Context, req LaunchRequest) (*LaunchResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	campaign := &model.Campaign{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Status:       model.CampaignLaunching,
		SMSEnabled:   req.SMS,
		VoiceEnabled: req.Voice,
		EmailEnabled: req.Email,
		SMSTemplate:  req.SMSTemplate,
		EmailSubject: req.EmailSubject,
		EmailBody:    req.EmailBody,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.campaigns.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	res := &LaunchResult{CampaignID: campaign.ID}

	candidates, err := o.loadCandidates(ctx, req.CandidateIDs)
	if err != nil {
		return res, fmt.Errorf("loading candidates for campaign %s: %w", campaign.ID, err)
	}

	o.insertLeads(ctx, campaign.ID, candidates, res)
	if req.SMS {
		o.sendSMS(ctx, campaign, candidates, &res.SMS)
	}
	if req.Voice {
		o.queueCalls(ctx, campaign.ID, candidates, &res.Voice)
	}
	if req.Email {
		o.launchEmail(ctx, campaign, candidates, res)
	}

	if err := o.campaigns.SetCampaignStatus(ctx, campaign.ID, model.CampaignActive); err != nil {
		slog.Error("marking campaign active failed", "campaign_id", campaign.ID, "err", err)
	}

	for name, ch := range map[string]ChannelResult{"sms": res.SMS, "voice": res.Voice, "email": res.Email} {
		o.metrics.CampaignChannel(name, "succeeded", ch.Succeeded)
		o.metrics.CampaignChannel(name, "failed", ch.Failed)
	}
	slog.Info("campaign launched",
		"campaign_id", campaign.ID,
		"leads", res.Leads,
		"sms_sent", res.SMS.Succeeded,
		"calls_queued", res.Voice.Succeeded,
		"email_leads", res.Email.Succeeded,
	)
	return res, nil
}

// loadCandidates returns the requested candidates in request order, skipping unknown ids.
func (o *Orchestrator) loadCandidates(ctx context.Context, ids []string) ([]model.Candidate, error) {
	found, err := o.candidates.FindCandidates(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Candidate, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	out := make([]model.Candidate, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out, nil
}

func (o *Orchestrator) insertLeads(ctx context.Context, campaignID string, candidates []model.Candidate, res *LaunchResult) {
	now := o.now().UTC()
	leads := make([]model.Lead, 0, len(candidates))
	for _, c := range candidates {
		leads = append(leads, model.Lead{
			ID:          uuid.NewString(),
			CampaignID:  campaignID,
			CandidateID: c.ID,
			Status:      model.LeadNew,
			CreatedAt:   now,
		})
	}

	if err := o.campaigns.InsertLeads(ctx, leads); err != nil {
		slog.Error("inserting campaign leads failed", "campaign_id", campaignID, "err", err)
		return
	}
	res.Leads = len(leads)
}

func (o *Orchestrator) sendSMS(ctx context.Context, campaign *model.Campaign, candidates []model.Candidate, out *ChannelResult) {
	var (
		mu      sync.Mutex
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, c := range candidates {
		if strings.TrimSpace(c.Phone) == "" {
			continue
		}
		out.Attempted++

		g.Go(func() error {
			_, err := o.sms.Send(gctx, SendRequest{
				To:          c.Phone,
				Body:        personalize(campaign.SMSTemplate, c),
				CandidateID: c.ID,
				ContactName: c.DisplayName(),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed++
				lastErr = err
				slog.Warn("campaign sms failed", "campaign_id", campaign.ID, "candidate_id", c.ID, "err", err)
				return nil
			}
			out.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	if lastErr != nil {
		out.Error = lastErr.Error()
	}
}

func (o *Orchestrator) queueCalls(ctx context.Context, campaignID string, candidates []model.Candidate, out *ChannelResult) {
	now := o.now().UTC()
	var jobs []model.CallJob
	for _, c := range candidates {
		if strings.TrimSpace(c.Phone) == "" {
			continue
		}
		jobs = append(jobs, model.CallJob{
			ID:          uuid.NewString(),
			CampaignID:  campaignID,
			CandidateID: c.ID,
			Phone:       c.Phone,
			Status:      model.CallJobQueued,
			CreatedAt:   now,
		})
	}
	out.Attempted = len(jobs)

	if err := o.campaigns.InsertCallJobs(ctx, jobs); err != nil {
		slog.Error("queueing call jobs failed", "campaign_id", campaignID, "err", err)
		out.Failed = len(jobs)
		out.Error = err.Error()
		return
	}
	out.Succeeded = len(jobs)
}

func (o *Orchestrator) launchEmail(ctx context.Context, campaign *model.Campaign, candidates []model.Candidate, res *LaunchResult) {
	out := &res.Email

	var withEmail []model.Candidate
	for _, c := range candidates {
		if strings.TrimSpace(c.Email) != "" {
			withEmail = append(withEmail, c)
		}
	}
	out.Attempted = len(withEmail)
	if len(withEmail) == 0 {
		return
	}

	if o.mailer == nil || !o.mailer.Configured() {
		out.Failed = len(withEmail)
		out.Error = ErrConfiguration.Error() + ": mailer api key is not set"
		return
	}

	remoteID, err := o.mailer.CreateCampaign(ctx, campaign.Name, campaign.EmailSubject, campaign.EmailBody)
	if err != nil {
		slog.Error("creating remote email campaign failed", "campaign_id", campaign.ID, "err", err)
		out.Failed = len(withEmail)
		out.Error = err.Error()
		return
	}
	res.RemoteCampaignID = remoteID
	if err := o.campaigns.SetRemoteCampaign(ctx, campaign.ID, remoteID); err != nil {
		slog.Error("storing remote campaign id failed", "campaign_id", campaign.ID, "remote_id", remoteID, "err", err)
	}

	for _, c := range withEmail {
		err := o.mailer.AddLead(ctx, remoteID, client.MailerLead{
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
		})
		if err != nil {
			out.Failed++
			out.Error = err.Error()
			slog.Warn("adding email lead failed", "campaign_id", campaign.ID, "candidate_id", c.ID, "err", err)
			continue
		}
		out.Succeeded++
	}

	if out.Succeeded == 0 {
		return
	}
	if err := o.mailer.Activate(ctx, remoteID); err != nil {
		slog.Error("activating remote email campaign failed", "campaign_id", campaign.ID, "remote_id", remoteID, "err", err)
		out.Error = err.Error()
	}
}

func personalize(template string, c model.Candidate) string {
	return strings.NewReplacer(
		"{{first_name}}", c.FirstName,
		"{{last_name}}", c.LastName,
		"{{name}}", c.DisplayName(),
		"{{specialty}}", c.Specialty,
	).Replace(template)
}
