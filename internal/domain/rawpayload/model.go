package rawpayload

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/valyala/bytebufferpool"
)

// Payload is one upstream response body retained verbatim for auditing
// divergent feeds. The hash covers source, endpoint and body so identical
// refetches dedupe on upsert.
type Payload struct {
	Source    string
	EventID   string
	Endpoint  string
	Body      []byte
	Hash      string
	FetchedAt time.Time
}

func New(source, eventID, endpoint string, body []byte, fetchedAt time.Time) Payload {
	return Payload{
		Source:    source,
		EventID:   eventID,
		Endpoint:  endpoint,
		Body:      body,
		Hash:      hashPayload(source, endpoint, body),
		FetchedAt: fetchedAt.UTC(),
	}
}

func hashPayload(source, endpoint string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(source)
	_ = buf.WriteByte('|')
	_, _ = buf.WriteString(endpoint)
	_ = buf.WriteByte('|')
	_, _ = buf.Write(body)

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
