// File: services/intelligence/prompt.go
package intelligence

import (
	"fmt"
	"strings"

	"concierge/models"
)

const systemInstructions = `You are the concierge assistant for a resort and retail desk.
Guests can ask about rooms, spa treatments, golf tee times, and running shoes,
check availability, book, change, or cancel.

Interpret the guest's latest message and respond with a single JSON object,
no prose around it, in this shape:

{"action": "...", ...}

Allowed actions and their fields:
  query  - {"action":"query","category":"room|spa|golf|shoe","constraints":{"date":"YYYY-MM-DD","size":"...","activity":"...","keyword":"...","maxPrice":0}}
  book   - {"action":"book","ref":{"itemId":"...","slotId":"...","date":"YYYY-MM-DD"},"agreedPrice":0}
  modify - {"action":"modify","entrySeq":0,"newRef":{"itemId":"...","slotId":"...","date":"YYYY-MM-DD"},"agreedPrice":0}
  cancel - {"action":"cancel","entrySeq":0}
  info   - {"action":"info","reply":"..."} for questions about what was already booked or totals
  chat   - {"action":"chat","reply":"..."} for greetings and small talk

Only include fields the guest actually stated. Never invent item IDs, slot
IDs, prices, or dates. When the guest agrees to an offer you quoted earlier,
use that offer's ref and price as agreedPrice. Omit constraints you do not
know rather than guessing.`

// BuildPrompt assembles the collaborator prompt for one turn: standing
// instructions, the recent conversation, then the new message.
func BuildPrompt(convCtx *models.ConversationContext, message string) string {
	var sb strings.Builder
	sb.WriteString(systemInstructions)
	sb.WriteString("\n\n")

	if convCtx != nil && len(convCtx.Turns) > 0 {
		sb.WriteString("Conversation so far:\n")
		// Cap the window so long sessions do not grow the prompt unboundedly.
		turns := convCtx.Turns
		if len(turns) > 12 {
			turns = turns[len(turns)-12:]
		}
		for _, t := range turns {
			fmt.Fprintf(&sb, "Guest: %s\nConcierge: %s\n", t.Customer, t.Agent)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Guest: %s\n", message)
	return sb.String()
}
