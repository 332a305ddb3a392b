package wire

import "github.com/sagemsg/gmweb/pblite"

// ReceiveMessagesRequest is the body posted to open the long-poll
// stream (spec §6.1 ReceiveMessages), carrying only the listen
// request-id the stream's eventual close correlates against.
type ReceiveMessagesRequest struct {
	RequestID string
}

func (r ReceiveMessagesRequest) QualifiedName() string { return "rpc.ReceiveMessagesRequest" }
func (r ReceiveMessagesRequest) Fields() []any          { return []any{r.RequestID} }

// EncodeReceiveMessagesRequest is the longpoll.RequestEncoder the
// client facade wires into longpoll.NewEngine.
func EncodeReceiveMessagesRequest(listenRequestID string) ([]byte, error) {
	return pblite.Encode(ReceiveMessagesRequest{RequestID: listenRequestID})
}
