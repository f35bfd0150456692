package repo

import (
	"context"
	"errors"
	"time"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

var ErrNotFound = errors.New("not found")

type NumberPool interface {
	LeastLoaded(ctx context.Context) (*model.SenderNumber, error)
	RecordUsage(ctx context.Context, phoneNumber string, at time.Time) error
	ResetDailyCounters(ctx context.Context, startOfDay time.Time) (int64, error)
	CreateNumber(ctx context.Context, n *model.SenderNumber) error
	ListNumbers(ctx context.Context) ([]model.SenderNumber, error)
	SetNumberStatus(ctx context.Context, id string, status model.NumberStatus) error
}

type ConversationRepository interface {
	FindConversation(ctx context.Context, id string) (*model.Conversation, error)
	FindConversationByPhone(ctx context.Context, phone string) (*model.Conversation, error)
	// CreateConversation inserts c unless a conversation for the same counterparty
	// already exists. It reports whether c was inserted.
	CreateConversation(ctx context.Context, c *model.Conversation) (bool, error)
	// AppendMessage inserts m and applies u to its conversation. It reports false,
	// without touching the conversation, when m carries a carrier id already stored.
	AppendMessage(ctx context.Context, m *model.Message, u model.ThreadUpdate) (bool, error)
	ListConversations(ctx context.Context, limit, offset int) ([]model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
}

type CandidateDirectory interface {
	FindCandidate(ctx context.Context, id string) (*model.Candidate, error)
	FindCandidateByPhone(ctx context.Context, phone string) (*model.Candidate, error)
	FindCandidates(ctx context.Context, ids []string) ([]model.Candidate, error)
}

type CampaignRepository interface {
	CreateCampaign(ctx context.Context, c *model.Campaign) error
	InsertLeads(ctx context.Context, leads []model.Lead) error
	InsertCallJobs(ctx context.Context, jobs []model.CallJob) error
	SetRemoteCampaign(ctx context.Context, campaignID, remoteID string) error
	SetCampaignStatus(ctx context.Context, campaignID string, status model.CampaignStatus) error
}

var (
	_ NumberPool             = (*Store)(nil)
	_ ConversationRepository = (*Store)(nil)
	_ CandidateDirectory     = (*Store)(nil)
	_ CampaignRepository     = (*Store)(nil)
)
