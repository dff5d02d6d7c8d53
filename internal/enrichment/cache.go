package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chomnr/brute-go/internal/model"
)

// freshWindowMs is the maximum age, in event-clock milliseconds, of a
// previously-persisted enrichment row that can still be served as a cache
// hit, per spec §4.2.
const freshWindowMs = 300_000

// RecentLookup is satisfied by the store layer: it returns the most
// recently persisted EnrichedEvent for ip, if any.
type RecentLookup interface {
	MostRecentEnrichedEventForIP(ctx context.Context, ip string) (model.EnrichedEvent, bool, error)
}

// Precheck is an optional fast-path cache consulted before the database.
// It never changes cache semantics (the database row's age is still the
// source of truth on a miss) — it only saves a database round trip when
// the same IP was resolved moments ago on another instance.
type Precheck interface {
	Get(ctx context.Context, ip string) (model.Enrichment, bool)
	Set(ctx context.Context, ip string, enr model.Enrichment, ttl time.Duration)
}

// Cache is the IP Enrichment Cache (C2). It is safe for concurrent use;
// calls to the external provider are serialized through a single mutex.
// The mutex does not coalesce lookups: concurrent misses for the same IP
// each call the provider in turn. A repeat call within freshWindowMs is
// avoided once the first result has been persisted (or stored in the
// precheck), which is the case for the Aggregator's serial pipeline.
type Cache struct {
	provider Provider
	recent   RecentLookup
	precheck Precheck // may be nil

	mu sync.Mutex
}

// New builds a Cache. precheck may be nil, in which case only the database
// row's freshness is consulted.
func New(provider Provider, recent RecentLookup, precheck Precheck) *Cache {
	return &Cache{provider: provider, recent: recent, precheck: precheck}
}

// Lookup resolves enrichment fields for ip as of eventTimestamp (the
// originating attempt's clock, in epoch milliseconds). It returns a
// previously-persisted row when one exists and is no older than
// freshWindowMs relative to eventTimestamp; otherwise it calls the
// provider and returns freshly resolved fields.
func (c *Cache) Lookup(ctx context.Context, ip string, eventTimestamp int64) (model.Enrichment, error) {
	if c.precheck != nil {
		if enr, ok := c.precheck.Get(ctx, ip); ok {
			return enr, nil
		}
	}

	if c.recent != nil {
		row, found, err := c.recent.MostRecentEnrichedEventForIP(ctx, ip)
		if err != nil {
			return model.Enrichment{}, fmt.Errorf("enrichment: checking recent row for %s: %w", ip, err)
		}
		if found && eventTimestamp-row.Timestamp <= freshWindowMs && eventTimestamp >= row.Timestamp {
			return enrichmentFromRow(row), nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	enr, err := c.provider.Lookup(ctx, ip)
	if err != nil {
		return model.Enrichment{}, err
	}
	if c.precheck != nil {
		c.precheck.Set(ctx, ip, enr, freshWindowMs*time.Millisecond)
	}
	slog.Debug("enrichment: resolved via provider", "ip", ip)
	return enr, nil
}

func enrichmentFromRow(row model.EnrichedEvent) model.Enrichment {
	return model.Enrichment{
		Hostname: row.Hostname,
		City:     row.City,
		Region:   row.Region,
		Country:  row.Country,
		Loc:      row.Loc,
		Org:      row.Org,
		Postal:   row.Postal,
		Timezone: row.Timezone,
		Asn: model.Asn{
			ASN: row.AsnASN, Name: row.AsnName, Domain: row.AsnDomain, Route: row.AsnRoute, Type: row.AsnType,
		},
		Company: model.Company{Name: row.CompanyName, Domain: row.CompanyDomain, Type: row.CompanyType},
		Privacy: model.Privacy{
			VPN: row.VPN, Proxy: row.Proxy, Tor: row.Tor, Relay: row.Relay, Hosting: row.Hosting, Service: row.Service,
		},
		Abuse: model.Abuse{
			Address: row.AbuseAddress, Country: row.AbuseCountry, Email: row.AbuseEmail,
			Name: row.AbuseName, Network: row.AbuseNetwork, Phone: row.AbusePhone,
		},
		Domains: model.Domains{IP: row.DomainIP, Total: row.DomainTotal, Domains: row.Domains},
	}
}
