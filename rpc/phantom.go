package rpc

// IncomingEnvelope is the minimal shape the phantom filter and waiter
// correlation need from a decoded incoming data envelope.
type IncomingEnvelope struct {
	SessionID            string
	Action               Action
	EncryptedProtoData   []byte
	EncryptedProtoData2  []byte
	UnencryptedProtoData []byte
}

// gaiaPairingActions are the two actions phantom filtering never
// discards, per spec §4.4's lookup-key quirk.
var gaiaPairingActions = map[Action]bool{
	ActionSignInGaia:     true,
	ActionClientFinished: true,
}

// IsPhantomEnvelope reports whether env should be discarded rather
// than treated as a response, when googleHosted is true: the Google
// host variant sometimes emits "phantom" data before the real
// response, identified as non-Gaia-pairing envelopes whose only
// non-empty payload field is unencrypted_proto_data.
func IsPhantomEnvelope(env IncomingEnvelope, googleHosted bool) bool {
	if !googleHosted {
		return false
	}
	if gaiaPairingActions[env.Action] {
		return false
	}
	onlyUnencrypted := len(env.EncryptedProtoData) == 0 &&
		len(env.EncryptedProtoData2) == 0 &&
		len(env.UnencryptedProtoData) > 0
	return onlyUnencrypted
}
