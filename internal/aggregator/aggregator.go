// Package aggregator implements the Aggregator (spec component C3): a
// single-consumer mailbox that runs the 16-step ingestion pipeline for
// every admitted event, in arrival order, with no concurrency within the
// pipeline itself.
package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/chomnr/brute-go/internal/model"
)

// EventStore is the subset of internal/store the pipeline writes to.
type EventStore interface {
	InsertEvent(ctx context.Context, e model.Event) error
	InsertEnrichedEvent(ctx context.Context, ee model.EnrichedEvent) error
	UpsertLeaderboard(ctx context.Context, table, key string, delta int64) (model.LeaderboardRow, error)
	UpsertCombo(ctx context.Context, freshID, username, password string, delta int64) (model.ComboRow, error)
	AdvanceBucket(ctx context.Context, table string, now, widthMs int64) (model.BucketRow, error)
}

// EnrichmentLookup is the subset of internal/enrichment the pipeline calls.
type EnrichmentLookup interface {
	Lookup(ctx context.Context, ip string, eventTimestamp int64) (model.Enrichment, error)
}

// Publisher is the subset of internal/broadcast the pipeline hands
// finished records to.
type Publisher interface {
	Broadcast(parseType string, payload any)
}

// tagged log lines for the Aggregator's per-event hot path, matching the
// teacher's [TAG] log.Printf convention used for its rate limiter.
var pipelineLogger = log.New(log.Writer(), "[AGGREGATOR] ", log.LstdFlags)

// Aggregator is the single-consumer pipeline runner. Zero value is not
// usable; construct with New.
type Aggregator struct {
	mailbox   chan model.Event
	store     EventStore
	enrich    EnrichmentLookup
	publisher Publisher
	now       func() time.Time
}

// Option configures an Aggregator at construction time.
type Option func(*Aggregator)

// WithClock overrides the wall clock used for id/timestamp assignment and
// bucket advancement, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New builds an Aggregator with the given mailbox capacity. Call Run in a
// dedicated goroutine to start consuming.
func New(mailboxCapacity int, store EventStore, enrich EnrichmentLookup, publisher Publisher, opts ...Option) *Aggregator {
	a := &Aggregator{
		mailbox:   make(chan model.Event, mailboxCapacity),
		store:     store,
		enrich:    enrich,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mailbox returns the send side of the event queue. The Credential Sink
// and decoy HTTP handlers enqueue onto this channel.
func (a *Aggregator) Mailbox() chan<- model.Event { return a.mailbox }

// Run consumes the mailbox until ctx is canceled, processing one event at
// a time. It never returns an error — pipeline failures are logged and
// the event is dropped, per spec §4.3.
func (a *Aggregator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-a.mailbox:
			a.process(ctx, event)
		}
	}
}

// process runs the 16-step pipeline for a single event. Each step's
// failure aborts the remaining steps for this event only; prior steps are
// not rolled back, per spec §4.3.
func (a *Aggregator) process(ctx context.Context, event model.Event) {
	// Step 1: assign id and timestamp.
	event.ID = newEventID()
	event.Timestamp = a.now().UnixMilli()

	// Step 2: insert Event row.
	if err := a.store.InsertEvent(ctx, event); err != nil {
		pipelineLogger.Printf("event=%s ip=%s step=insert_event error=%v", event.ID, event.IP, err)
		return
	}

	// Step 3: resolve enrichment.
	enr, err := a.enrich.Lookup(ctx, event.IP, event.Timestamp)
	if err != nil {
		pipelineLogger.Printf("event=%s ip=%s step=enrichment error=%v", event.ID, event.IP, err)
		return
	}

	// Step 4: insert EnrichedEvent row.
	enriched := model.NewEnrichedEvent(event, enr)
	if err := a.store.InsertEnrichedEvent(ctx, enriched); err != nil {
		pipelineLogger.Printf("event=%s ip=%s step=insert_enriched error=%v", event.ID, event.IP, err)
		return
	}

	// Steps 5-14: scalar leaderboard upserts.
	scalarUpserts := []struct {
		table string
		key   string
	}{
		{"top_username", event.Username},
		{"top_password", event.Password},
		{"top_ip", event.IP},
		{"top_protocol", event.Protocol},
		{"top_city", enr.City},
		{"top_region", enr.Region},
		{"top_country", enr.Country},
		{"top_timezone", enr.Timezone},
		{"top_org", enr.Org},
		{"top_postal", enr.Postal},
	}
	for _, u := range scalarUpserts {
		if _, err := a.store.UpsertLeaderboard(ctx, u.table, u.key, 1); err != nil {
			pipelineLogger.Printf("event=%s ip=%s step=upsert_%s error=%v", event.ID, event.IP, u.table, err)
			return
		}
	}

	// Step 15: composite username/password combo.
	if _, err := a.store.UpsertCombo(ctx, newEventID(), event.Username, event.Password, 1); err != nil {
		pipelineLogger.Printf("event=%s ip=%s step=upsert_combo error=%v", event.ID, event.IP, err)
		return
	}

	// Step 16: advance the four time-bucket counters.
	buckets := []struct {
		table   string
		widthMs int64
	}{
		{"top_hourly", model.HourlyWidthMs},
		{"top_daily", model.DailyWidthMs},
		{"top_weekly", model.WeeklyWidthMs},
		{"top_yearly", model.YearlyWidthMs},
	}
	for _, b := range buckets {
		if _, err := a.store.AdvanceBucket(ctx, b.table, event.Timestamp, b.widthMs); err != nil {
			pipelineLogger.Printf("event=%s ip=%s step=advance_%s error=%v", event.ID, event.IP, b.table, err)
			return
		}
	}

	a.publisher.Broadcast("ProcessedIndividual", enriched)
}

func newEventID() string {
	return uuidHex(uuid.New())
}

func uuidHex(id uuid.UUID) string {
	// 32 lowercase hex characters, no dashes, per spec §3.
	buf := make([]byte, 32)
	const hexDigits = "0123456789abcdef"
	for i, b := range id {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return string(buf)
}
