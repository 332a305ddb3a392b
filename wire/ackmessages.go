package wire

import "github.com/sagemsg/gmweb/pblite"

// AckMessagesRequest is the inner payload for an AckMessages RPC: a
// flat list of message ids the browser has now displayed.
type AckMessagesRequest struct {
	IDs []string
}

func (a AckMessagesRequest) QualifiedName() string { return "rpc.AckMessagesRequest" }

func (a AckMessagesRequest) Fields() []any {
	ids := make([]any, len(a.IDs))
	for i, id := range a.IDs {
		ids[i] = id
	}
	return []any{ids}
}

// EncodeAckMessagesRequest is the rpc.AckSender payload builder the
// client facade wires into rpc.AckBatcher.
func EncodeAckMessagesRequest(ids []string) ([]byte, error) {
	return pblite.Encode(AckMessagesRequest{IDs: ids})
}
