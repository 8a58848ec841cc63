package intelligence

import (
	"testing"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentBareJSON(t *testing.T) {
	intent := ParseIntent(`{"action":"query","category":"spa","constraints":{"date":"2026-09-03"}}`)
	assert.Equal(t, models.IntentQuery, intent.Kind)
	assert.Equal(t, "spa", intent.Category)
	assert.Equal(t, "2026-09-03", intent.Constraints.Date)
}

func TestParseIntentFencedJSON(t *testing.T) {
	raw := "Sure, here is the action:\n```json\n{\"action\":\"book\",\"ref\":{\"itemId\":\"room-109\",\"slotId\":\"room-109-2026-09-03-900\",\"date\":\"2026-09-03\"},\"agreedPrice\":150}\n```"
	intent := ParseIntent(raw)
	require.Equal(t, models.IntentBook, intent.Kind)
	require.NotNil(t, intent.Ref)
	assert.Equal(t, "room-109", intent.Ref.ItemID)
	assert.Equal(t, 150.0, intent.AgreedPrice)
}

func TestParseIntentNestedBraces(t *testing.T) {
	intent := ParseIntent(`{"action":"modify","entrySeq":2,"newRef":{"itemId":"spa-swedish","slotId":"spa-swedish-2026-09-03-780","date":"2026-09-03"},"agreedPrice":75}`)
	require.Equal(t, models.IntentModify, intent.Kind)
	assert.Equal(t, int64(2), intent.EntrySeq)
	require.NotNil(t, intent.NewRef)
	assert.Equal(t, "spa-swedish", intent.NewRef.ItemID)
}

func TestParseIntentPlainTextBecomesChat(t *testing.T) {
	intent := ParseIntent("Good afternoon! How may I help you today?")
	assert.Equal(t, models.IntentChat, intent.Kind)
	assert.Equal(t, "Good afternoon! How may I help you today?", intent.Reply)
}

func TestParseIntentMalformedJSON(t *testing.T) {
	intent := ParseIntent(`{"action":"book","agreedPrice":`)
	assert.Equal(t, models.IntentUnknown, intent.Kind)
}

func TestParseIntentUnknownAction(t *testing.T) {
	intent := ParseIntent(`{"action":"teleport"}`)
	assert.Equal(t, models.IntentUnknown, intent.Kind)
}

func TestParseIntentEmpty(t *testing.T) {
	intent := ParseIntent("   ")
	assert.Equal(t, models.IntentUnknown, intent.Kind)
}
