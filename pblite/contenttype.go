package pblite

import "strings"

// ContentType classifies how a response body on the wire is framed.
type ContentType int

const (
	ContentTypeProtobuf ContentType = iota
	ContentTypePblite
	ContentTypeText
)

// Sniff classifies a Content-Type header. An unrecognized or absent
// header falls back to protobuf first, then pblite, per spec §4.1 —
// callers that already know they're talking to a pblite endpoint
// should not rely on this fallback and should call Decode directly.
func Sniff(header string) ContentType {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	switch ct {
	case "application/x-protobuf":
		return ContentTypeProtobuf
	case "application/json+protobuf":
		return ContentTypePblite
	case "text/plain":
		// The server sometimes mislabels a pblite body as text/plain;
		// treat it as pblite per spec §4.1/§6.2.
		return ContentTypeText
	default:
		return ContentTypeProtobuf
	}
}

// IsPblite reports whether a sniffed content type should be decoded
// with this package's Decode rather than a raw protobuf unmarshal.
func (c ContentType) IsPblite() bool {
	return c == ContentTypePblite || c == ContentTypeText
}
