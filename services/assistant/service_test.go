package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogRepo "concierge/database/repository/catalog"
	ledgerRepo "concierge/database/repository/ledger"
	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM replays canned completions, one per turn.
type scriptedLLM struct {
	mu      sync.Mutex
	outputs []string
	err     error
	delay   time.Duration
	prompts []string
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.outputs) == 0 {
		return `{"action":"chat","reply":"How can I help?"}`, nil
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return out, nil
}

// memContexts is a map-backed ContextStore for tests.
type memContexts struct {
	mu sync.Mutex
	m  map[string]*models.ConversationContext
}

func newMemContexts() *memContexts {
	return &memContexts{m: make(map[string]*models.ConversationContext)}
}

func (s *memContexts) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.m[sessionID]; ok {
		copied := *c
		return &copied, nil
	}
	return &models.ConversationContext{SessionID: sessionID}, nil
}

func (s *memContexts) Set(ctx context.Context, sessionID string, c *models.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.m[sessionID] = &copied
	return nil
}

func (s *memContexts) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
	return nil
}

func newTestService(llm *scriptedLLM) (*DefaultAssistantService, catalogRepo.CatalogRepository) {
	catalog := catalogRepo.NewMemoryCatalogRepo(
		catalogRepo.SeedItems(),
		catalogRepo.SeedSlots(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 3),
	)
	return &DefaultAssistantService{
		Catalog:    catalog,
		Ledger:     ledgerRepo.NewMemoryLedgerRepo(),
		LLM:        llm,
		Contexts:   newMemContexts(),
		LLMTimeout: 200 * time.Millisecond,
		SessionTTL: 30 * time.Minute,
	}, catalog
}

func turn(t *testing.T, svc *DefaultAssistantService, sessionID, content string) *models.ChatReply {
	t.Helper()
	reply, err := svc.ProcessTurn(context.Background(), models.ChatMessage{SessionID: sessionID, Content: content})
	require.NoError(t, err)
	return reply
}

func TestQueryReturnsOffers(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"query","category":"room","constraints":{"date":"2026-09-02"}}`,
	}})

	reply := turn(t, svc, "s1", "any rooms for the 2nd?")
	assert.Equal(t, models.ReplyInfo, reply.Kind)
	require.NotEmpty(t, reply.Offers)
	assert.Contains(t, reply.Response, "Deluxe Room 109")
}

func TestQueryWithoutCategoryAsksForClarification(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{`{"action":"query"}`}})

	reply := turn(t, svc, "s1", "got anything?")
	assert.Equal(t, models.ReplyClarification, reply.Kind)
}

func TestBookCommitsAndTotals(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
	}})

	reply := turn(t, svc, "s1", "take room 109 on the 2nd")
	assert.Equal(t, models.ReplyResolved, reply.Kind)
	require.NotNil(t, reply.Entry)
	assert.Equal(t, models.EntryBook, reply.Entry.Kind)
	assert.Equal(t, int64(1), reply.Entry.Seq)

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 150, total, 0.001)
}

func TestBookAtStalePriceIsRefusedAndRequoted(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
	}})

	reply := turn(t, svc, "s1", "book it at the 120 you quoted")
	assert.Equal(t, models.ReplyRejected, reply.Kind)
	assert.Contains(t, reply.Response, "150.00")
	assert.Nil(t, reply.Entry)

	// The refused attempt consumed nothing.
	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, total)
	ref := models.SlotRef{ItemID: "room-109", SlotID: "room-109-2026-09-02-900", Date: "2026-09-02"}
	assert.NoError(t, catalog.Reserve(context.Background(), ref, 150))
}

func TestBookSoldOutOffersAlternatives(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"spa-hotstone","slotId":"spa-hotstone-2026-09-01-600","date":"2026-09-01"},"agreedPrice":90}`,
	}})

	// Someone else takes the last unit first.
	ref := models.SlotRef{ItemID: "spa-hotstone", SlotID: "spa-hotstone-2026-09-01-600", Date: "2026-09-01"}
	require.NoError(t, catalog.Reserve(context.Background(), ref, 90))

	reply := turn(t, svc, "s1", "book the morning hot stone")
	assert.Equal(t, models.ReplyRejected, reply.Kind)
	require.NotEmpty(t, reply.Offers)
	for _, o := range reply.Offers {
		assert.NotEqual(t, ref, o.Ref)
	}

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCancelReversesBooking(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-117","slotId":"room-117-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
		`{"action":"cancel","entrySeq":1}`,
	}})

	turn(t, svc, "s1", "book room 117 on the 2nd")
	reply := turn(t, svc, "s1", "actually cancel that")
	assert.Equal(t, models.ReplyResolved, reply.Kind)

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, total)

	// Capacity returned to the pool.
	ref := models.SlotRef{ItemID: "room-117", SlotID: "room-117-2026-09-02-900", Date: "2026-09-02"}
	assert.NoError(t, catalog.Reserve(context.Background(), ref, 120))

	// History keeps both movements: the booking and its reversal.
	entries, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCancelUnknownEntryIsRefused(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{`{"action":"cancel","entrySeq":7}`}})

	reply := turn(t, svc, "s1", "cancel my booking")
	assert.Equal(t, models.ReplyRejected, reply.Kind)
}

func TestCancelTwiceIsRefusedSecondTime(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-117","slotId":"room-117-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
		`{"action":"cancel","entrySeq":1}`,
		`{"action":"cancel","entrySeq":1}`,
	}})

	turn(t, svc, "s1", "book room 117")
	turn(t, svc, "s1", "cancel it")
	reply := turn(t, svc, "s1", "cancel it again")
	assert.Equal(t, models.ReplyRejected, reply.Kind)

	entries, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the second cancel appended nothing")
}

func TestModifySwapsBookings(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
		`{"action":"modify","entrySeq":1,"newRef":{"itemId":"room-117","slotId":"room-117-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
	}})

	turn(t, svc, "s1", "book the deluxe room")
	reply := turn(t, svc, "s1", "switch me to the cheaper queen instead")
	assert.Equal(t, models.ReplyResolved, reply.Kind)

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 120, total, 0.001)

	// The original room is back on the market.
	ref := models.SlotRef{ItemID: "room-109", SlotID: "room-109-2026-09-02-900", Date: "2026-09-02"}
	assert.NoError(t, catalog.Reserve(context.Background(), ref, 150))
}

func TestModifyToSoldOutKeepsOriginal(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
		`{"action":"modify","entrySeq":1,"newRef":{"itemId":"spa-hotstone","slotId":"spa-hotstone-2026-09-02-600","date":"2026-09-02"},"agreedPrice":90}`,
	}})

	// Sell out the modification target.
	soldOut := models.SlotRef{ItemID: "spa-hotstone", SlotID: "spa-hotstone-2026-09-02-600", Date: "2026-09-02"}
	require.NoError(t, catalog.Reserve(context.Background(), soldOut, 90))

	turn(t, svc, "s1", "book the deluxe room")
	reply := turn(t, svc, "s1", "swap it for a morning massage")
	assert.Equal(t, models.ReplyRejected, reply.Kind)

	// The original booking still stands.
	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 150, total, 0.001)
}

func TestInfoSummarisesLedger(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
		`{"action":"info"}`,
	}})

	turn(t, svc, "s1", "book the deluxe room")
	reply := turn(t, svc, "s1", "what do I have so far?")
	assert.Equal(t, models.ReplyInfo, reply.Kind)
	assert.Contains(t, reply.Response, "Deluxe Room 109")
	assert.Contains(t, reply.Response, "150.00")
}

func TestMalformedCompletionAsksForClarification(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{outputs: []string{`{"action":"book","agreedPrice":`}})

	reply := turn(t, svc, "s1", "book the thing")
	assert.Equal(t, models.ReplyClarification, reply.Kind)
}

func TestLLMTimeoutDegradesWithoutMutation(t *testing.T) {
	llm := &scriptedLLM{
		outputs: []string{`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`},
		delay:   2 * time.Second,
	}
	svc, _ := newTestService(llm)

	reply := turn(t, svc, "s1", "book the deluxe room")
	assert.Equal(t, models.ReplyError, reply.Kind)

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConcurrentTurnsOnOneSessionAreRefused(t *testing.T) {
	llm := &scriptedLLM{delay: 100 * time.Millisecond}
	svc, _ := newTestService(llm)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = svc.ProcessTurn(context.Background(), models.ChatMessage{SessionID: "s1", Content: "first"})
		close(done)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	_, err := svc.ProcessTurn(context.Background(), models.ChatMessage{SessionID: "s1", Content: "second"})
	var ae *AssistError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeSessionBusy, ae.Code)
	<-done
}

func TestNewSessionGetsID(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{})

	reply, err := svc.ProcessTurn(context.Background(), models.ChatMessage{Content: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.SessionID)
}

func TestConversationContextFeedsNextPrompt(t *testing.T) {
	llm := &scriptedLLM{outputs: []string{
		`{"action":"chat","reply":"We have rooms from $120."}`,
		`{"action":"chat","reply":"Certainly."}`,
	}}
	svc, _ := newTestService(llm)

	turn(t, svc, "s1", "what do rooms cost?")
	turn(t, svc, "s1", "and the cheapest?")

	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[1], "what do rooms cost?")
	assert.Contains(t, llm.prompts[1], "We have rooms from $120.")
}

// flakyCatalog wraps a real catalog and fails Release for one ref.
type flakyCatalog struct {
	catalogRepo.CatalogRepository
	failRelease models.SlotRef
}

func (f *flakyCatalog) Release(ctx context.Context, ref models.SlotRef) error {
	if ref == f.failRelease {
		return errors.New("catalog offline")
	}
	return f.CatalogRepository.Release(ctx, ref)
}

// flakyLedger wraps a real ledger and fails the next failNext Appends.
type flakyLedger struct {
	ledgerRepo.LedgerRepository
	failNext int
}

func (f *flakyLedger) Append(ctx context.Context, sessionID string, e models.LedgerEntry) (int64, error) {
	if f.failNext > 0 {
		f.failNext--
		return 0, errors.New("ledger offline")
	}
	return f.LedgerRepository.Append(ctx, sessionID, e)
}

func TestModifyReleaseFailureRollsBackReplacementEverywhere(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
		`{"action":"modify","entrySeq":1,"newRef":{"itemId":"room-117","slotId":"room-117-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
	}})
	oldRef := models.SlotRef{ItemID: "room-109", SlotID: "room-109-2026-09-02-900", Date: "2026-09-02"}
	svc.Catalog = &flakyCatalog{CatalogRepository: catalog, failRelease: oldRef}

	turn(t, svc, "s1", "book the deluxe room")
	_, err := svc.ProcessTurn(context.Background(), models.ChatMessage{SessionID: "s1", Content: "move me to the queen"})
	var ae *AssistError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeStoreUnavailable, ae.Code)

	// Only the original booking counts towards the total.
	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 150, total, 0.001)

	// The replacement's unit went back on the market with its entry reversed.
	newRef := models.SlotRef{ItemID: "room-117", SlotID: "room-117-2026-09-02-900", Date: "2026-09-02"}
	assert.NoError(t, catalog.Reserve(context.Background(), newRef, 120))

	entries, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	active := ledgerRepo.ActiveEntries(entries)
	require.Len(t, active, 1)
	assert.Equal(t, "room-109", active[0].Ref.ItemID)
}

func TestCancelAppendFailureKeepsBookingAndItsUnit(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-117","slotId":"room-117-2026-09-02-900","date":"2026-09-02"},"agreedPrice":120}`,
		`{"action":"cancel","entrySeq":1}`,
		`{"action":"cancel","entrySeq":1}`,
	}})
	ledger := &flakyLedger{LedgerRepository: svc.Ledger}
	svc.Ledger = ledger

	turn(t, svc, "s1", "book room 117")

	ledger.failNext = 1
	_, err := svc.ProcessTurn(context.Background(), models.ChatMessage{SessionID: "s1", Content: "cancel it"})
	var ae *AssistError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeStoreUnavailable, ae.Code)

	// The booking is still active and still holds its unit.
	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 120, total, 0.001)
	ref := models.SlotRef{ItemID: "room-117", SlotID: "room-117-2026-09-02-900", Date: "2026-09-02"}
	assert.ErrorIs(t, catalog.Reserve(context.Background(), ref, 120), catalogRepo.ErrUnavailable)

	// Retrying the cancel once the ledger is back succeeds cleanly.
	reply := turn(t, svc, "s1", "cancel it")
	assert.Equal(t, models.ReplyResolved, reply.Kind)
	total, err = svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, catalog.Reserve(context.Background(), ref, 120))

	entries, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCloseSessionDropsTurnLock(t *testing.T) {
	svc, _ := newTestService(&scriptedLLM{})

	turn(t, svc, "s1", "hello")
	_, held := svc.locks.locks.Load("s1")
	assert.True(t, held)

	require.NoError(t, svc.CloseSession(context.Background(), "s1"))
	_, held = svc.locks.locks.Load("s1")
	assert.False(t, held)
}

func TestRunningTotalAcrossBookingsAndCancel(t *testing.T) {
	svc, catalog := newTestService(&scriptedLLM{outputs: []string{
		`{"action":"book","ref":{"itemId":"room-109","slotId":"room-109-2026-09-02-900","date":"2026-09-02"},"agreedPrice":150}`,
		`{"action":"book","ref":{"itemId":"spa-hotstone","slotId":"spa-hotstone-2026-09-02-600","date":"2026-09-02"},"agreedPrice":90}`,
		`{"action":"book","ref":{"itemId":"golf-championship","slotId":"golf-championship-2026-09-02-480","date":"2026-09-02"},"agreedPrice":80}`,
		`{"action":"cancel","entrySeq":3}`,
	}})

	turn(t, svc, "s1", "book the deluxe room")
	turn(t, svc, "s1", "add a morning hot stone massage")
	reply := turn(t, svc, "s1", "and an 8am tee time")
	assert.Equal(t, models.ReplyResolved, reply.Kind)

	total, err := svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 320, total, 0.001)

	turn(t, svc, "s1", "drop the golf")
	total, err = svc.TotalCost(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 240, total, 0.001)

	// The tee time capacity came back.
	golf := models.SlotRef{ItemID: "golf-championship", SlotID: "golf-championship-2026-09-02-480", Date: "2026-09-02"}
	offers, err := catalog.FindAvailable(context.Background(), models.CategoryGolf, models.Constraints{Date: "2026-09-02"})
	require.NoError(t, err)
	found := false
	for _, o := range offers {
		if o.Ref == golf {
			found = true
			assert.Equal(t, 4, o.Remaining)
		}
	}
	assert.True(t, found)
}
