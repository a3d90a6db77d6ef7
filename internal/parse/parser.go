package parse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theflipapp/intake/internal/catalog"
)

// AssetSource supplies the known assets. Satisfied by *catalog.Cache.
type AssetSource interface {
	Assets(ctx context.Context) ([]catalog.Asset, error)
	BySlug(ctx context.Context, slug string) (catalog.Asset, bool, error)
}

// TicketLookup finds the most recently created open ticket on an asset.
// A nil ticket with nil error means no open ticket exists.
type TicketLookup interface {
	OpenTicket(ctx context.Context, assetSlug string) (*Ticket, error)
}

// RecordLookup confirms referenced records still exist and returns enough of
// each to attach parents. A nil record with nil error means the reference is
// stale; errors are infrastructure failures.
type RecordLookup interface {
	Ticket(ctx context.Context, id int64) (*Ticket, error)
	PartsRequest(ctx context.Context, id int64) (*PartsRequest, error)
	LogEntry(ctx context.Context, id int64) (*LogEntry, error)
	PartsRequestUpdate(ctx context.Context, id int64) (*PartsRequestUpdate, error)
}

// Parser sequences reference resolution, asset name matching, and intent
// classification into one decision procedure. Stateless per call; safe for
// concurrent use when its collaborators are.
type Parser struct {
	links      *Links
	classifier *Classifier
	assets     AssetSource
	tickets    TicketLookup
	records    RecordLookup
	logger     *slog.Logger
}

// NewParser creates a Parser over the given collaborators.
func NewParser(log *slog.Logger, links *Links, classifier *Classifier, assets AssetSource, tickets TicketLookup, records RecordLookup) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{
		links:      links,
		classifier: classifier,
		assets:     assets,
		tickets:    tickets,
		records:    records,
		logger:     log.With(slog.String("service", "parse")),
	}
}

// Parse decides what record the message should produce. The first matching
// branch wins and there is no backtracking:
//
//  1. reply context URL
//  2. explicit in-text references (PR #n, parts #n)
//  3. embedded record or asset URLs
//  4. asset name matching
//  5. intent classification with the resolved asset
//  6. ignore
//
// Semantic non-matches (unknown host, stale id, ambiguous name) fall through
// to the next step. Collaborator failures propagate as errors.
func (p *Parser) Parse(ctx context.Context, msg Message) (Result, error) {
	// 1. Replying to a previously posted record link.
	if msg.ReplyToURL != "" {
		if ref := p.links.ParseURL(msg.ReplyToURL); ref != nil {
			res, ok, err := p.resolveReply(ctx, *ref)
			if err != nil {
				return Result{}, err
			}
			if ok {
				return res, nil
			}
		}
	}

	// 2. Explicit references in the message body.
	for _, ref := range ParseExplicitRefs(msg.Text) {
		switch ref.Kind {
		case RefTicket:
			t, err := p.records.Ticket(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("ticket lookup: %w", err)
			}
			if t != nil {
				return Result{
					Verdict: VerdictLogEntry,
					Asset:   &t.Asset,
					Ticket:  t,
					Reason:  fmt.Sprintf("Explicit ticket #%d reference", t.ID),
				}, nil
			}
		case RefPartsRequest:
			req, err := p.records.PartsRequest(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("parts request lookup: %w", err)
			}
			if req != nil {
				return Result{
					Verdict: VerdictPartsRequestUpdate,
					Asset:   &req.Asset,
					Request: req,
					Reason:  fmt.Sprintf("Explicit parts #%d reference", req.ID),
				}, nil
			}
		}
	}

	// 3. Record or asset URLs embedded in the message body.
	for _, ref := range p.links.ParseText(msg.Text) {
		switch ref.Kind {
		case RefTicket:
			t, err := p.records.Ticket(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("ticket lookup: %w", err)
			}
			if t != nil {
				return Result{
					Verdict: VerdictLogEntry,
					Asset:   &t.Asset,
					Ticket:  t,
					Reason:  fmt.Sprintf("URL to ticket #%d", t.ID),
				}, nil
			}
		case RefPartsRequest:
			req, err := p.records.PartsRequest(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("parts request lookup: %w", err)
			}
			if req != nil {
				return Result{
					Verdict: VerdictPartsRequestUpdate,
					Asset:   &req.Asset,
					Request: req,
					Reason:  fmt.Sprintf("URL to parts request #%d", req.ID),
				}, nil
			}
		case RefPartsRequestUpdate:
			upd, err := p.records.PartsRequestUpdate(ctx, ref.ID)
			if err != nil {
				return Result{}, fmt.Errorf("parts request update lookup: %w", err)
			}
			if upd != nil {
				req := upd.Request
				return Result{
					Verdict: VerdictPartsRequestUpdate,
					Asset:   &req.Asset,
					Request: &req,
					Reason:  fmt.Sprintf("URL to parts request update #%d", upd.ID),
				}, nil
			}
		case RefAsset:
			asset, found, err := p.assets.BySlug(ctx, ref.AssetSlug)
			if err != nil {
				return Result{}, fmt.Errorf("asset lookup: %w", err)
			}
			if found {
				return p.classifyWithAsset(ctx, msg.Text, asset)
			}
		}
	}

	// 4. Asset name matching over the full message text.
	assets, err := p.assets.Assets(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("asset catalog: %w", err)
	}
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.DisplayName
	}
	if name, ok := FindAssetName(msg.Text, names); ok {
		for _, a := range assets {
			if a.DisplayName == name {
				p.logger.Debug("asset matched", slog.String("asset", a.Slug))
				return p.classifyWithAsset(ctx, msg.Text, a)
			}
		}
	}

	// 6. Nothing to attach to.
	return Result{
		Verdict: VerdictIgnore,
		Reason:  "no asset or reference found",
	}, nil
}

// resolveReply derives the verdict directly from the replied-to record,
// bypassing classification. Returns ok=false when the reference is stale so
// the pipeline falls through.
func (p *Parser) resolveReply(ctx context.Context, ref Reference) (Result, bool, error) {
	switch ref.Kind {
	case RefTicket:
		t, err := p.records.Ticket(ctx, ref.ID)
		if err != nil {
			return Result{}, false, fmt.Errorf("ticket lookup: %w", err)
		}
		if t == nil {
			return Result{}, false, nil
		}
		return Result{
			Verdict: VerdictLogEntry,
			Asset:   &t.Asset,
			Ticket:  t,
			Reason:  fmt.Sprintf("Reply to ticket #%d", t.ID),
		}, true, nil
	case RefPartsRequest:
		req, err := p.records.PartsRequest(ctx, ref.ID)
		if err != nil {
			return Result{}, false, fmt.Errorf("parts request lookup: %w", err)
		}
		if req == nil {
			return Result{}, false, nil
		}
		return Result{
			Verdict: VerdictPartsRequestUpdate,
			Asset:   &req.Asset,
			Request: req,
			Reason:  fmt.Sprintf("Reply to parts request #%d", req.ID),
		}, true, nil
	case RefLogEntry:
		entry, err := p.records.LogEntry(ctx, ref.ID)
		if err != nil {
			return Result{}, false, fmt.Errorf("log entry lookup: %w", err)
		}
		if entry == nil {
			return Result{}, false, nil
		}
		// A reply to a log entry continues that entry's own thread.
		return Result{
			Verdict: VerdictLogEntry,
			Asset:   &entry.Asset,
			Ticket:  entry.Ticket,
			Reason:  fmt.Sprintf("Reply to log entry #%d", entry.ID),
		}, true, nil
	case RefPartsRequestUpdate:
		upd, err := p.records.PartsRequestUpdate(ctx, ref.ID)
		if err != nil {
			return Result{}, false, fmt.Errorf("parts request update lookup: %w", err)
		}
		if upd == nil {
			return Result{}, false, nil
		}
		req := upd.Request
		return Result{
			Verdict: VerdictPartsRequestUpdate,
			Asset:   &req.Asset,
			Request: &req,
			Reason:  fmt.Sprintf("Reply to parts request update #%d", upd.ID),
		}, true, nil
	}
	return Result{}, false, nil
}

// classifyWithAsset runs intent classification once the asset is known.
func (p *Parser) classifyWithAsset(ctx context.Context, text string, asset catalog.Asset) (Result, error) {
	switch p.classifier.Classify(text) {
	case VerdictPartsRequest:
		return Result{
			Verdict: VerdictPartsRequest,
			Asset:   &asset,
			Reason:  fmt.Sprintf("Parts keywords found, asset: %s", asset.DisplayName),
		}, nil
	case VerdictTicket:
		return Result{
			Verdict: VerdictTicket,
			Asset:   &asset,
			Reason:  fmt.Sprintf("Problem keywords found, asset: %s", asset.DisplayName),
		}, nil
	}

	// Log entry: link to the most recent open ticket when one exists.
	open, err := p.tickets.OpenTicket(ctx, asset.Slug)
	if err != nil {
		return Result{}, fmt.Errorf("open ticket lookup: %w", err)
	}
	worked := p.classifier.HasWorkIndication(text)

	if open != nil {
		reason := fmt.Sprintf("Default to log, linked to open ticket #%d", open.ID)
		if worked {
			reason = fmt.Sprintf("Work keywords, linked to open ticket #%d", open.ID)
		}
		return Result{
			Verdict: VerdictLogEntry,
			Asset:   &asset,
			Ticket:  open,
			Reason:  reason,
		}, nil
	}

	reason := fmt.Sprintf("Default to standalone log, asset: %s", asset.DisplayName)
	if worked {
		reason = fmt.Sprintf("Work keywords, no open ticket, asset: %s", asset.DisplayName)
	}
	return Result{
		Verdict: VerdictLogEntry,
		Asset:   &asset,
		Reason:  reason,
	}, nil
}
