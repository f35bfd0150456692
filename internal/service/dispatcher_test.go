package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo/repotest"
	"github.com/LeventeLantos/campaign-builder/internal/service"
	"github.com/LeventeLantos/campaign-builder/internal/webhook"
)

func TestDispatcher_PicksLeastLoadedThenThreadsReply(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 5, 100)
	repotest.AddNumber(t, h.store, "+15550000002", 2, 100)

	res, err := h.dispatcher.Send(ctx, service.SendRequest{To: "+15551234567", Body: "Hi, are you open to a new role?"})
	require.NoError(t, err)
	assert.Equal(t, "+15550000002", res.SenderUsed)
	assert.Equal(t, service.SourcePool, res.Source)
	assert.NotEmpty(t, res.MessageSID)
	assert.NotEmpty(t, res.ConversationID)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, 3, repotest.Number(t, h.store, "+15550000002").MessagesSentToday)
	assert.Equal(t, 5, repotest.Number(t, h.store, "+15550000001").MessagesSentToday)

	conv, err := h.conversations.Find(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "+15550000002", conv.AssignedSender)
	assert.Equal(t, 1, conv.TotalMessages)

	msgs, err := h.conversations.Messages(ctx, conv.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.Outbound, msgs[0].Direction)
	assert.Equal(t, model.Sent, msgs[0].Status)

	err = h.reconciler.HandleInbound(ctx, webhook.Inbound{
		From:       "+15551234567",
		To:         "+15550000002",
		Body:       "Yes I'm interested!",
		MessageSID: "SM123",
	})
	require.NoError(t, err)

	conv, err = h.conversations.Find(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCount)
	assert.True(t, conv.InterestDetected)
	assert.True(t, conv.CandidateReplied)
	assert.Equal(t, 2, conv.TotalMessages)
	assert.Equal(t, model.Inbound, conv.LastMessageDirection)
}

func TestDispatcher_SecondSendReusesThreadAndSender(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 0, 100)

	first, err := h.dispatcher.Send(ctx, service.SendRequest{To: "+15551234567", Body: "first"})
	require.NoError(t, err)

	// A fresher number would win on load alone.
	repotest.AddNumber(t, h.store, "+15550000002", 0, 100)

	second := strings.Repeat("é", 150)
	res, err := h.dispatcher.Send(ctx, service.SendRequest{To: "+15551234567", Body: second})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, res.ConversationID)
	assert.Equal(t, "+15550000001", res.SenderUsed)
	assert.Equal(t, service.SourceAffinity, res.Source)

	conv, err := h.conversations.Find(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.TotalMessages)
	assert.Equal(t, strings.Repeat("é", 100), conv.LastMessagePreview)
	assert.Equal(t, 1, repotest.CountConversations(t, h.store, "+15551234567"))
}

func TestDispatcher_NamedConversationSetsSender(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 50, 100)
	repotest.AddNumber(t, h.store, "+15550000002", 0, 100)

	conv, _, err := h.conversations.GetOrCreate(ctx, model.NewConversation{
		CounterpartyPhone: "+15551234567",
		AssignedSender:    "+15550000001",
	})
	require.NoError(t, err)

	res, err := h.dispatcher.Send(ctx, service.SendRequest{
		To:             "+15551234567",
		Body:           "following up",
		ConversationID: conv.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "+15550000001", res.SenderUsed)
	assert.Equal(t, conv.ID, res.ConversationID)
}

func TestDispatcher_PinnedSenderWins(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 90, 100)
	repotest.AddNumber(t, h.store, "+15550000002", 0, 100)

	res, err := h.dispatcher.Send(ctx, service.SendRequest{
		To:           "+15551234567",
		Body:         "hello",
		PinnedSender: "+15550000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "+15550000001", res.SenderUsed)
	assert.Equal(t, service.SourcePinned, res.Source)
	assert.Equal(t, "+15550000001", h.carrier.sent()[0].From)
	assert.Equal(t, 91, repotest.Number(t, h.store, "+15550000001").MessagesSentToday)
}

func TestDispatcher_SpreadsLoadAcrossPool(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 0, 100)
	repotest.AddNumber(t, h.store, "+15550000002", 0, 100)

	for i := range 9 {
		_, err := h.dispatcher.Send(ctx, service.SendRequest{
			To:   fmt.Sprintf("+1555900%04d", i),
			Body: "hello",
		})
		require.NoError(t, err)
	}

	a := repotest.Number(t, h.store, "+15550000001").MessagesSentToday
	b := repotest.Number(t, h.store, "+15550000002").MessagesSentToday
	assert.Equal(t, 9, a+b)
	assert.LessOrEqual(t, max(a, b)-min(a, b), 1)
}

func TestDispatcher_ConcurrentSendsShareOneConversation(t *testing.T) {
	h := newHarness(t, "+15550009999")
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.dispatcher.Send(ctx, service.SendRequest{
				To:   "+15551234567",
				Body: fmt.Sprintf("message %d", i),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repotest.CountConversations(t, h.store, "+15551234567"))

	conv, err := h.conversations.FindByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, n, conv.TotalMessages)
}

func TestDispatcher_FallsBackToDefaultNumber(t *testing.T) {
	h := newHarness(t, "+15550009999")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 10, 10)

	res, err := h.dispatcher.Send(ctx, service.SendRequest{To: "+15551234567", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "+15550009999", res.SenderUsed)
	assert.Equal(t, service.SourceFallback, res.Source)

	// Exhausted pool numbers stay at their limit.
	assert.Equal(t, 10, repotest.Number(t, h.store, "+15550000001").MessagesSentToday)
}

func TestDispatcher_NoSenderAvailable(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.dispatcher.Send(context.Background(), service.SendRequest{To: "+15551234567", Body: "hello"})
	require.ErrorIs(t, err, service.ErrConfiguration)
	assert.Empty(t, h.carrier.sent())
}

func TestDispatcher_CarrierNotConfigured(t *testing.T) {
	h := newHarness(t, "+15550009999")
	h.carrier.configured = false

	_, err := h.dispatcher.Send(context.Background(), service.SendRequest{To: "+15551234567", Body: "hello"})
	require.ErrorIs(t, err, service.ErrConfiguration)
	assert.Empty(t, h.carrier.sent())
}

func TestDispatcher_RejectsInvalidRequests(t *testing.T) {
	h := newHarness(t, "+15550009999")

	tests := []struct {
		name string
		req  service.SendRequest
	}{
		{"missing phone", service.SendRequest{Body: "hello"}},
		{"blank phone", service.SendRequest{To: "   ", Body: "hello"}},
		{"missing body", service.SendRequest{To: "+15551234567"}},
		{"too long", service.SendRequest{To: "+15551234567", Body: strings.Repeat("x", 1601)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.dispatcher.Send(context.Background(), tt.req)
			require.ErrorIs(t, err, service.ErrInvalidRequest)
		})
	}
	assert.Empty(t, h.carrier.sent())
}

func TestDispatcher_CarrierRejectionChangesNothing(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	repotest.AddNumber(t, h.store, "+15550000001", 3, 100)
	h.carrier.err = &client.CarrierError{StatusCode: 400, Code: 21211, Message: "Invalid 'To' Phone Number"}

	_, err := h.dispatcher.Send(ctx, service.SendRequest{To: "+1555", Body: "hello"})
	require.Error(t, err)

	var de *service.DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 400, de.Status)
	assert.Equal(t, 21211, de.Code)

	assert.Equal(t, 0, repotest.CountConversations(t, h.store, "+1555"))
	n := repotest.Number(t, h.store, "+15550000001")
	assert.Equal(t, 3, n.MessagesSentToday)
	assert.Nil(t, n.LastUsedAt)
}

func TestDispatcher_TransportFailureIsDispatchError(t *testing.T) {
	h := newHarness(t, "+15550009999")
	h.carrier.err = errors.New("connection refused")

	_, err := h.dispatcher.Send(context.Background(), service.SendRequest{To: "+15551234567", Body: "hello"})

	var de *service.DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Status)
	assert.Contains(t, de.Error(), "connection refused")
}

func TestDispatcher_BookkeepingFailureAfterAcceptIsWarning(t *testing.T) {
	s := repotest.NewStore(t)
	ctx := context.Background()
	repotest.AddNumber(t, s, "+15550000001", 0, 100)

	carrier := newFakeCarrier()
	selector := service.NewNumberSelector(s, "", nil)
	convs := service.NewConversations(&failingAppends{ConversationRepository: s, n: 1}, s)
	d := service.NewDispatcher(carrier, selector, convs, 1600, nil)

	res, err := d.Send(ctx, service.SendRequest{To: "+15551234567", Body: "Hi there"})
	require.NoError(t, err)
	assert.Equal(t, "SMout0001", res.MessageSID)
	assert.Equal(t, "+15550000001", res.SenderUsed)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "recording message", res.Warnings[0].Step)
	assert.ErrorIs(t, res.Warnings[0], errDBDown)
	assert.Contains(t, res.Warnings[0].Error(), "SMout0001")

	assert.Len(t, carrier.sent(), 1)
	assert.Equal(t, 1, repotest.Number(t, s, "+15550000001").MessagesSentToday)
}
