// File: services/assistant/resolver.go
package assistant

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "concierge/database/repository/catalog"
	ledgerRepo "concierge/database/repository/ledger"
	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// Resolution is the outcome of resolving one intent against the stores.
type Resolution struct {
	Kind   string
	Text   string
	Offers []models.Offer
	Entry  *models.LedgerEntry
}

func clarification(text string) *Resolution {
	return &Resolution{Kind: models.ReplyClarification, Text: text}
}

func rejected(text string) *Resolution {
	return &Resolution{Kind: models.ReplyRejected, Text: text}
}

// resolve executes the proposed intent. Every path that commits money goes
// through the catalog's conditional reserve and the append-only ledger;
// nothing here trusts a price or an availability claim from the model.
func (s *DefaultAssistantService) resolve(ctx context.Context, sessionID string, intent models.Intent) (*Resolution, error) {
	switch intent.Kind {
	case models.IntentQuery:
		return s.resolveQuery(ctx, intent)
	case models.IntentBook:
		return s.resolveBook(ctx, sessionID, intent)
	case models.IntentModify:
		return s.resolveModify(ctx, sessionID, intent)
	case models.IntentCancel:
		return s.resolveCancel(ctx, sessionID, intent)
	case models.IntentInfo:
		return s.resolveInfo(ctx, sessionID)
	case models.IntentChat:
		return &Resolution{Kind: models.ReplyInfo, Text: intent.Reply}, nil
	default:
		return clarification("I didn't quite catch that. Are you looking to check availability, book something, or change an existing booking?"), nil
	}
}

func (s *DefaultAssistantService) resolveQuery(ctx context.Context, intent models.Intent) (*Resolution, error) {
	if intent.Category == "" {
		return clarification("What are you looking for: a room, a spa treatment, a tee time, or shoes?"), nil
	}
	offers, err := s.Catalog.FindAvailable(ctx, intent.Category, intent.Constraints)
	if err != nil {
		return nil, NewStoreUnavailableError(fmt.Sprintf("availability lookup failed: %v", err))
	}
	if len(offers) == 0 {
		return rejected(formatNoAvailability(intent.Category, intent.Constraints)), nil
	}
	return &Resolution{
		Kind:   models.ReplyInfo,
		Text:   formatOffers(offers),
		Offers: offers,
	}, nil
}

func (s *DefaultAssistantService) resolveBook(ctx context.Context, sessionID string, intent models.Intent) (*Resolution, error) {
	if intent.Ref == nil || intent.Ref.ItemID == "" {
		return clarification("Which option would you like me to book?"), nil
	}
	if intent.AgreedPrice <= 0 {
		return clarification("Just to confirm the price before I book it, which quoted offer are you taking?"), nil
	}
	return s.commitReservation(ctx, sessionID, *intent.Ref, intent.AgreedPrice)
}

// commitReservation reserves ref at the agreed price and appends the ledger
// entry. It also serves as the replacement leg of a modification.
func (s *DefaultAssistantService) commitReservation(ctx context.Context, sessionID string, ref models.SlotRef, agreedPrice float64) (*Resolution, error) {
	err := s.Catalog.Reserve(ctx, ref, agreedPrice)
	switch {
	case errors.Is(err, catalogRepo.ErrNotFound):
		return clarification("I couldn't find that option anymore. Want me to look up what's currently available?"), nil
	case errors.Is(err, catalogRepo.ErrPriceMismatch):
		current, perr := s.Catalog.CurrentPrice(ctx, ref)
		if perr != nil {
			return nil, NewStoreUnavailableError(fmt.Sprintf("price lookup failed: %v", perr))
		}
		return rejected(fmt.Sprintf("The price on that has changed: it is now $%.2f. Shall I book it at the current price?", current)), nil
	case errors.Is(err, catalogRepo.ErrUnavailable):
		return s.offerAlternatives(ctx, ref)
	case err != nil:
		return nil, NewStoreUnavailableError(fmt.Sprintf("reservation failed: %v", err))
	}

	item, err := s.Catalog.ItemByID(ctx, ref.ItemID)
	if err != nil {
		// The reservation is committed; a failed name lookup must not undo it.
		utils.GetLogger().Warn("item lookup after reserve failed", zap.String("itemId", ref.ItemID), zap.Error(err))
		item = &models.CatalogItem{ID: ref.ItemID, Name: ref.ItemID}
	}

	kind := models.EntryBook
	if !ref.Dated() {
		kind = models.EntryPurchase
	}
	entry := models.LedgerEntry{
		Kind:     kind,
		Ref:      ref,
		ItemName: item.Name,
		Price:    agreedPrice,
	}
	seq, err := s.Ledger.Append(ctx, sessionID, entry)
	if err != nil {
		// Undo the reservation so capacity is not leaked on a dead entry.
		if rerr := s.Catalog.Release(ctx, ref); rerr != nil {
			utils.GetLogger().Error("release after failed ledger append",
				zap.String("sessionId", sessionID), zap.Error(rerr))
		}
		return nil, NewStoreUnavailableError(fmt.Sprintf("could not record the booking: %v", err))
	}
	entry.SessionID = sessionID
	entry.Seq = seq

	total, err := s.Ledger.TotalCost(ctx, sessionID)
	if err != nil {
		total = 0
	}
	return &Resolution{
		Kind:  models.ReplyResolved,
		Text:  formatConfirmation(entry, total),
		Entry: &entry,
	}, nil
}

// offerAlternatives answers a sold-out reservation attempt with what is still
// open in the same category.
func (s *DefaultAssistantService) offerAlternatives(ctx context.Context, ref models.SlotRef) (*Resolution, error) {
	item, err := s.Catalog.ItemByID(ctx, ref.ItemID)
	if err != nil {
		return rejected("That option just sold out."), nil
	}
	// Same date first (adjacent slots), then any date.
	offers, err := s.Catalog.FindAvailable(ctx, item.Category, models.Constraints{Date: ref.Date})
	if err == nil && len(offers) == 0 && ref.Date != "" {
		offers, err = s.Catalog.FindAvailable(ctx, item.Category, models.Constraints{})
	}
	if err != nil || len(offers) == 0 {
		return rejected(fmt.Sprintf("%s just sold out, and I don't see anything else open right now.", item.Name)), nil
	}
	// Don't re-offer the thing that just failed.
	alternatives := offers[:0:0]
	for _, o := range offers {
		if o.Ref == ref {
			continue
		}
		alternatives = append(alternatives, o)
	}
	if len(alternatives) == 0 {
		return rejected(fmt.Sprintf("%s just sold out, and I don't see anything else open right now.", item.Name)), nil
	}
	return &Resolution{
		Kind:   models.ReplyRejected,
		Text:   fmt.Sprintf("%s just sold out. Here's what is still open:\n%s", item.Name, formatOffers(alternatives)),
		Offers: alternatives,
	}, nil
}

// restoreReservation re-holds capacity that was released during a turn whose
// ledger write failed, so the still-active entry keeps its unit. Retried at
// the current price if the catalog price moved in between.
func (s *DefaultAssistantService) restoreReservation(ctx context.Context, ref models.SlotRef, price float64) {
	err := s.Catalog.Reserve(ctx, ref, price)
	if errors.Is(err, catalogRepo.ErrPriceMismatch) {
		if current, perr := s.Catalog.CurrentPrice(ctx, ref); perr == nil {
			err = s.Catalog.Reserve(ctx, ref, current)
		}
	}
	if err != nil {
		utils.GetLogger().Error("could not restore reservation after failed ledger append",
			zap.String("itemId", ref.ItemID), zap.String("slotId", ref.SlotID), zap.Error(err))
	}
}

// undoCommit reverses a reservation commitReservation already completed when
// the surrounding turn later failed: the capacity goes back to the pool and a
// reversing entry neutralizes the booking in the ledger.
func (s *DefaultAssistantService) undoCommit(ctx context.Context, sessionID string, entry *models.LedgerEntry) {
	if err := s.Catalog.Release(ctx, entry.Ref); err != nil && !errors.Is(err, catalogRepo.ErrNotFound) {
		utils.GetLogger().Error("rollback release failed",
			zap.String("sessionId", sessionID), zap.String("itemId", entry.Ref.ItemID), zap.Error(err))
	}
	reversal := models.LedgerEntry{
		Kind:        models.EntryCancel,
		Ref:         entry.Ref,
		ItemName:    entry.ItemName,
		Price:       entry.Price,
		ReversesSeq: entry.Seq,
	}
	if _, err := s.Ledger.Append(ctx, sessionID, reversal); err != nil {
		utils.GetLogger().Error("rollback reversal append failed",
			zap.String("sessionId", sessionID), zap.Int64("reversesSeq", entry.Seq), zap.Error(err))
	}
}

func (s *DefaultAssistantService) resolveCancel(ctx context.Context, sessionID string, intent models.Intent) (*Resolution, error) {
	if intent.EntrySeq <= 0 {
		return clarification("Which booking should I cancel?"), nil
	}
	target, err := s.activeEntry(ctx, sessionID, intent.EntrySeq)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return rejected("I don't have an active booking under that reference."), nil
	}

	if err := s.Catalog.Release(ctx, target.Ref); err != nil && !errors.Is(err, catalogRepo.ErrNotFound) {
		return nil, NewStoreUnavailableError(fmt.Sprintf("could not release the booking: %v", err))
	}
	entry := models.LedgerEntry{
		Kind:        models.EntryCancel,
		Ref:         target.Ref,
		ItemName:    target.ItemName,
		Price:       target.Price,
		ReversesSeq: target.Seq,
	}
	seq, err := s.Ledger.Append(ctx, sessionID, entry)
	if err != nil {
		// The entry is still active, so take its unit back off the market.
		s.restoreReservation(ctx, target.Ref, target.Price)
		return nil, NewStoreUnavailableError(fmt.Sprintf("could not record the cancellation: %v", err))
	}
	entry.SessionID = sessionID
	entry.Seq = seq

	total, terr := s.Ledger.TotalCost(ctx, sessionID)
	if terr != nil {
		total = 0
	}
	return &Resolution{
		Kind:  models.ReplyResolved,
		Text:  fmt.Sprintf("Done, I've cancelled %s. Your running total is now $%.2f.", target.ItemName, total),
		Entry: &entry,
	}, nil
}

// resolveModify swaps an active booking for a new one: reserve the
// replacement first, and only release the original once the replacement is
// committed. A failure on the second leg rolls the replacement back so the
// customer never ends up with both or neither.
func (s *DefaultAssistantService) resolveModify(ctx context.Context, sessionID string, intent models.Intent) (*Resolution, error) {
	if intent.EntrySeq <= 0 || intent.NewRef == nil || intent.NewRef.ItemID == "" {
		return clarification("Which booking do you want to change, and to what?"), nil
	}
	if intent.AgreedPrice <= 0 {
		return clarification("Just to confirm the price on the new option, which quoted offer are you taking?"), nil
	}
	target, err := s.activeEntry(ctx, sessionID, intent.EntrySeq)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return rejected("I don't have an active booking under that reference to change."), nil
	}

	res, err := s.commitReservation(ctx, sessionID, *intent.NewRef, intent.AgreedPrice)
	if err != nil || res.Kind != models.ReplyResolved {
		return res, err
	}

	if rerr := s.Catalog.Release(ctx, target.Ref); rerr != nil && !errors.Is(rerr, catalogRepo.ErrNotFound) {
		// Roll the replacement all the way back, ledger entry included; the
		// original booking stands untouched.
		s.undoCommit(ctx, sessionID, res.Entry)
		return nil, NewStoreUnavailableError(fmt.Sprintf("could not release the original booking: %v", rerr))
	}

	cancelEntry := models.LedgerEntry{
		Kind:        models.EntryCancel,
		Ref:         target.Ref,
		ItemName:    target.ItemName,
		Price:       target.Price,
		ReversesSeq: target.Seq,
	}
	if _, err := s.Ledger.Append(ctx, sessionID, cancelEntry); err != nil {
		// The original entry stays active, so re-hold its unit. The
		// replacement booking is already committed and keeps its own unit.
		s.restoreReservation(ctx, target.Ref, target.Price)
		return nil, NewStoreUnavailableError(fmt.Sprintf("could not record the change: %v", err))
	}

	total, terr := s.Ledger.TotalCost(ctx, sessionID)
	if terr != nil {
		total = 0
	}
	res.Text = fmt.Sprintf("All set, I've moved you from %s to %s at $%.2f. Your running total is now $%.2f.",
		target.ItemName, res.Entry.ItemName, res.Entry.Price, total)
	return res, nil
}

func (s *DefaultAssistantService) resolveInfo(ctx context.Context, sessionID string) (*Resolution, error) {
	entries, err := s.Ledger.History(ctx, sessionID)
	if err != nil {
		return nil, NewStoreUnavailableError(fmt.Sprintf("history lookup failed: %v", err))
	}
	total, err := s.Ledger.TotalCost(ctx, sessionID)
	if err != nil {
		return nil, NewStoreUnavailableError(fmt.Sprintf("total lookup failed: %v", err))
	}
	return &Resolution{
		Kind: models.ReplyInfo,
		Text: formatSummary(ledgerRepo.ActiveEntries(entries), total),
	}, nil
}

// activeEntry looks up seq in the session's ledger and returns it only if no
// later entry has reversed it. Returns (nil, nil) when the entry is missing
// or already reversed.
func (s *DefaultAssistantService) activeEntry(ctx context.Context, sessionID string, seq int64) (*models.LedgerEntry, error) {
	entries, err := s.Ledger.History(ctx, sessionID)
	if err != nil {
		return nil, NewStoreUnavailableError(fmt.Sprintf("history lookup failed: %v", err))
	}
	for _, e := range ledgerRepo.ActiveEntries(entries) {
		if e.Seq == seq {
			copied := e
			return &copied, nil
		}
	}
	return nil, nil
}
