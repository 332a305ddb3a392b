package httpclient

import "github.com/sagemsg/gmweb/pblite"

// Content-type strings for the two request encodings this protocol
// uses (spec §6.2).
const (
	ContentTypeProtobuf = "application/x-protobuf"
	ContentTypePblite   = "application/json+protobuf"
)

// ResponseContentType classifies a response's Content-Type header,
// delegating to pblite.Sniff for the "protobuf first, then pblite"
// fallback spec §4.1 requires.
func ResponseContentType(header string) pblite.ContentType {
	return pblite.Sniff(header)
}
