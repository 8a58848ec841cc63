// File: services/assistant/formatter.go
package assistant

import (
	"fmt"
	"strings"

	"concierge/models"
)

const maxOffersShown = 5

func formatClock(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// formatOffers renders availability results as a short numbered list.
func formatOffers(offers []models.Offer) string {
	var sb strings.Builder
	shown := offers
	if len(shown) > maxOffersShown {
		shown = shown[:maxOffersShown]
	}
	for i, o := range shown {
		fmt.Fprintf(&sb, "%d. %s", i+1, o.Item.Name)
		if o.Item.Size != "" {
			fmt.Fprintf(&sb, " (size %s)", o.Item.Size)
		}
		if o.Slot != nil {
			fmt.Fprintf(&sb, " on %s at %s", o.Slot.Date, formatClock(o.Slot.Start))
		}
		fmt.Fprintf(&sb, " - $%.2f", o.Price)
		if o.Remaining == 1 {
			sb.WriteString(" (last one)")
		}
		sb.WriteString("\n")
	}
	if len(offers) > maxOffersShown {
		fmt.Fprintf(&sb, "...and %d more. Tell me if you'd like me to narrow it down.", len(offers)-maxOffersShown)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatNoAvailability(category string, cons models.Constraints) string {
	if cons.Date != "" {
		return fmt.Sprintf("I'm sorry, nothing is open in %s for %s. Would another date work?", category, cons.Date)
	}
	return fmt.Sprintf("I'm sorry, I don't see anything available in %s matching that right now.", category)
}

func formatConfirmation(entry models.LedgerEntry, total float64) string {
	verb := "booked"
	if entry.Kind == models.EntryPurchase {
		verb = "ordered"
	}
	if entry.Ref.Dated() {
		return fmt.Sprintf("You're all set: I've %s %s for %s at $%.2f. Your running total is $%.2f.",
			verb, entry.ItemName, entry.Ref.Date, entry.Price, total)
	}
	return fmt.Sprintf("You're all set: I've %s %s at $%.2f. Your running total is $%.2f.",
		verb, entry.ItemName, entry.Price, total)
}

// formatSummary renders the session's active bookings and running total.
func formatSummary(active []models.LedgerEntry, total float64) string {
	if len(active) == 0 {
		return "You have nothing booked in this session yet."
	}
	var sb strings.Builder
	sb.WriteString("Here's what you have so far:\n")
	for _, e := range active {
		fmt.Fprintf(&sb, "- #%d %s", e.Seq, e.ItemName)
		if e.Ref.Dated() {
			fmt.Fprintf(&sb, " on %s", e.Ref.Date)
		}
		fmt.Fprintf(&sb, " - $%.2f\n", e.Price)
	}
	fmt.Fprintf(&sb, "Running total: $%.2f", total)
	return sb.String()
}
