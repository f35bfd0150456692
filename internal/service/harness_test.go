package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
	"github.com/LeventeLantos/campaign-builder/internal/repo/repotest"
	"github.com/LeventeLantos/campaign-builder/internal/service"
)

type fakeCarrier struct {
	mu         sync.Mutex
	configured bool
	err        error
	calls      []sentSMS
}

type sentSMS struct {
	To, From, Body string
}

func newFakeCarrier() *fakeCarrier {
	return &fakeCarrier{configured: true}
}

func (f *fakeCarrier) Configured() bool { return f.configured }

func (f *fakeCarrier) SendSMS(_ context.Context, to, from, body string) (client.CarrierMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return client.CarrierMessage{}, f.err
	}
	f.calls = append(f.calls, sentSMS{To: to, From: from, Body: body})
	return client.CarrierMessage{SID: fmt.Sprintf("SMout%04d", len(f.calls)), Status: "queued"}, nil
}

func (f *fakeCarrier) sent() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.calls...)
}

var errDBDown = errors.New("db down")

// failingAppends fails the next n AppendMessage calls, then delegates.
type failingAppends struct {
	repo.ConversationRepository

	mu sync.Mutex
	n  int
}

func (f *failingAppends) AppendMessage(ctx context.Context, m *model.Message, u model.ThreadUpdate) (bool, error) {
	f.mu.Lock()
	if f.n > 0 {
		f.n--
		f.mu.Unlock()
		return false, errDBDown
	}
	f.mu.Unlock()
	return f.ConversationRepository.AppendMessage(ctx, m, u)
}

type harness struct {
	store         *repo.Store
	carrier       *fakeCarrier
	selector      *service.NumberSelector
	conversations *service.Conversations
	dispatcher    *service.Dispatcher
	reconciler    *service.Reconciler
}

func newHarness(t *testing.T, defaultNumber string) *harness {
	t.Helper()

	s := repotest.NewStore(t)
	carrier := newFakeCarrier()
	selector := service.NewNumberSelector(s, defaultNumber, nil)
	convs := service.NewConversations(s, s)

	return &harness{
		store:         s,
		carrier:       carrier,
		selector:      selector,
		conversations: convs,
		dispatcher:    service.NewDispatcher(carrier, selector, convs, 1600, nil),
		reconciler:    service.NewReconciler(convs, nil),
	}
}
