// Package events defines the single async event contract the client
// facade delivers to upstream callers (spec §6.7): one event at a
// time, serialized per component.
package events

// Kind enumerates every event kind this module can emit.
type Kind int

const (
	KindQR Kind = iota
	KindPairSuccessful
	KindTokenRefreshed
	KindListenRecovered
	KindListenTemporaryError
	KindListenFatalError
	KindPingFailed
	KindPhoneNotResponding
	KindPhoneRespondingAgain
	KindNoDataReceived
	KindMessage
	KindConversation
	KindTyping
	KindUserAlert
	KindSettings
	KindAccountChange
	KindGaiaLoggedOut
)

// Event is the envelope handed to the upstream callback. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind Kind

	// KindQR
	QRCode string // the emoji/QR payload

	// KindPairSuccessful
	PhoneID string
	Data    []byte

	// KindListenTemporaryError / KindListenFatalError / KindPingFailed
	Err error

	// KindPingFailed
	FailureCount int

	// KindMessage
	IsOld bool

	// KindConversation / KindUserAlert / KindSettings / KindTyping
	Payload []byte

	// KindAccountChange
	IsFake bool
}

// Callback receives one Event at a time. Implementations must not
// block indefinitely — they run on the engine's dispatch goroutine.
type Callback func(Event)
