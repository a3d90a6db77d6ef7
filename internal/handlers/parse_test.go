package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/theflipapp/intake/internal/catalog"
	"github.com/theflipapp/intake/internal/parse"
)

// fakeParser implements MessageParser with a fixed result.
type fakeParser struct {
	result parse.Result
	err    error
	got    parse.Message
}

func (f *fakeParser) Parse(_ context.Context, msg parse.Message) (parse.Result, error) {
	f.got = msg
	return f.result, f.err
}

func doParse(t *testing.T, parser MessageParser, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := NewParseHandler(slog.Default(), parser)
	h.Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestParseHandler_OK(t *testing.T) {
	t.Parallel()
	ticketID := int64(31)
	parser := &fakeParser{result: parse.Result{
		Verdict: parse.VerdictLogEntry,
		Asset:   &catalog.Asset{Slug: "godzilla-premium", DisplayName: "Godzilla (Premium)"},
		Ticket:  &parse.Ticket{ID: ticketID},
		Reason:  "Work keywords, linked to open ticket #31",
	}}

	rec := doParse(t, parser, `{"text":"Fixed the flipper on Godzilla"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Verdict != "log_entry" {
		t.Fatalf("verdict = %q, want log_entry", resp.Verdict)
	}
	if resp.Asset == nil || resp.Asset.Slug != "godzilla-premium" {
		t.Fatalf("asset = %+v, want godzilla-premium", resp.Asset)
	}
	if resp.TicketID == nil || *resp.TicketID != ticketID {
		t.Fatalf("ticket_id = %v, want 31", resp.TicketID)
	}
	if parser.got.Text != "Fixed the flipper on Godzilla" {
		t.Fatalf("parser received %+v", parser.got)
	}
}

func TestParseHandler_ReplyURLForwarded(t *testing.T) {
	t.Parallel()
	parser := &fakeParser{result: parse.Result{Verdict: parse.VerdictIgnore, Reason: "no asset or reference found"}}

	rec := doParse(t, parser, `{"text":"checked it","reply_to_url":"https://theflip.app/problem-reports/7/"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if parser.got.ReplyToURL != "https://theflip.app/problem-reports/7/" {
		t.Fatalf("reply url = %q, not forwarded", parser.got.ReplyToURL)
	}
}

func TestParseHandler_MissingText(t *testing.T) {
	t.Parallel()
	rec := doParse(t, &fakeParser{}, `{"reply_to_url":"https://theflip.app/logs/1/"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestParseHandler_LookupFailure(t *testing.T) {
	t.Parallel()
	rec := doParse(t, &fakeParser{err: errors.New("db down")}, `{"text":"see PR #1"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestParseHandler_IgnoreOmitsContext(t *testing.T) {
	t.Parallel()
	parser := &fakeParser{result: parse.Result{Verdict: parse.VerdictIgnore, Reason: "no asset or reference found"}}

	rec := doParse(t, parser, `{"text":"meeting at 3pm"}`)
	var resp ParseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Verdict != "ignore" || resp.Asset != nil || resp.TicketID != nil || resp.PartsRequestID != nil {
		t.Fatalf("resp = %+v, want bare ignore", resp)
	}
}
