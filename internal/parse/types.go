// Package parse decides what maintenance record an incoming chat message
// should produce and which existing entities it should attach to. It is a
// single-pass, side-effect-free pipeline: reference resolution, asset name
// matching, and keyword intent classification, sequenced by Parser.
package parse

import (
	"time"

	"github.com/theflipapp/intake/internal/catalog"
)

// Verdict is the kind of record a message should produce.
type Verdict string

const (
	VerdictLogEntry           Verdict = "log_entry"
	VerdictTicket             Verdict = "ticket"
	VerdictPartsRequest       Verdict = "parts_request"
	VerdictPartsRequestUpdate Verdict = "parts_request_update"
	VerdictIgnore             Verdict = "ignore"
)

// String returns the verdict as a plain string.
func (v Verdict) String() string {
	return string(v)
}

// RefKind is what a parsed reference points at.
type RefKind string

const (
	RefLogEntry           RefKind = "log_entry"
	RefTicket             RefKind = "ticket"
	RefPartsRequest       RefKind = "parts_request"
	RefPartsRequestUpdate RefKind = "parts_request_update"
	RefAsset              RefKind = "asset"
)

// Reference is a resolved reference parsed from a URL or explicit mention.
// ID is set for record references, AssetSlug for asset references.
type Reference struct {
	Kind      RefKind
	ID        int64
	AssetSlug string
}

// Message is one incoming chat message to classify.
type Message struct {
	// Text is the message body.
	Text string
	// ReplyToURL is set when the message replies to a previously posted
	// record link, carrying that link's URL.
	ReplyToURL string
}

// Ticket is a problem report against an asset.
type Ticket struct {
	ID        int64
	Asset     catalog.Asset
	Status    string
	CreatedAt time.Time
}

// PartsRequest is a request for replacement components on an asset.
type PartsRequest struct {
	ID    int64
	Asset catalog.Asset
}

// LogEntry is a free-form maintenance note, optionally linked to a ticket.
type LogEntry struct {
	ID     int64
	Asset  catalog.Asset
	Ticket *Ticket
}

// PartsRequestUpdate is a threaded follow-up note on a parts request.
type PartsRequestUpdate struct {
	ID      int64
	Request PartsRequest
}

// Result is the full classification decision for one message.
//
// A VerdictIgnore result carries no asset and no parent. Any other verdict
// carries an asset, a parent ticket or parts request, or both.
type Result struct {
	Verdict Verdict
	Asset   *catalog.Asset
	Ticket  *Ticket
	Request *PartsRequest
	// Reason is a human-readable audit trail for why this verdict was chosen.
	Reason string
}
