// Package store is the Postgres access layer: Event/EnrichedEvent
// persistence, leaderboard upserts, time-bucket advancement, and the
// bounded read queries behind the stats API. Leaderboard and combo upserts
// are single atomic statements with no application-level read-modify-write;
// time-bucket advancement selects the latest row and then inserts or
// updates inside one transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chomnr/brute-go/internal/model"
)

// Store wraps a *sql.DB configured for Postgres.
type Store struct {
	db *sql.DB
}

// Open dials connString (a postgres:// DSN) and configures the pool per
// spec §5 (200–500 connections).
func Open(connString string) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	db.SetMaxOpenConns(500)
	db.SetMaxIdleConns(200)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies connectivity, used at startup to report an unreachable
// database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping failed: %w", err)
	}
	return nil
}

// InsertEvent persists the canonical Event row.
func (s *Store) InsertEvent(ctx context.Context, e model.Event) error {
	const q = `
		INSERT INTO individual (id, username, password, ip, protocol, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, q, e.ID, e.Username, e.Password, e.IP, e.Protocol, e.Timestamp)
	if err != nil {
		return fmt.Errorf("store: inserting event %s: %w", e.ID, err)
	}
	return nil
}

// InsertEnrichedEvent persists the combined Event+enrichment row.
func (s *Store) InsertEnrichedEvent(ctx context.Context, ee model.EnrichedEvent) error {
	const q = `
		INSERT INTO processed_individual (
			id, username, password, ip, protocol,
			hostname, city, region, country, loc, org, postal, timezone,
			asn, asn_name, asn_domain, asn_route, asn_type,
			company_name, company_domain, company_type,
			vpn, proxy, tor, relay, hosting, service,
			abuse_address, abuse_country, abuse_email, abuse_name, abuse_network, abuse_phone,
			domain_ip, domain_total, domains,
			timestamp
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24, $25, $26, $27,
			$28, $29, $30, $31, $32, $33,
			$34, $35, $36,
			$37
		)`
	_, err := s.db.ExecContext(ctx, q,
		ee.ID, ee.Username, ee.Password, ee.IP, ee.Protocol,
		ee.Hostname, ee.City, ee.Region, ee.Country, ee.Loc, ee.Org, ee.Postal, ee.Timezone,
		ee.AsnASN, ee.AsnName, ee.AsnDomain, ee.AsnRoute, ee.AsnType,
		ee.CompanyName, ee.CompanyDomain, ee.CompanyType,
		ee.VPN, ee.Proxy, ee.Tor, ee.Relay, ee.Hosting, ee.Service,
		ee.AbuseAddress, ee.AbuseCountry, ee.AbuseEmail, ee.AbuseName, ee.AbuseNetwork, ee.AbusePhone,
		ee.DomainIP, ee.DomainTotal, pq.Array(ee.Domains),
		ee.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("store: inserting enriched event %s: %w", ee.ID, err)
	}
	return nil
}

// MostRecentEnrichedEventForIP implements enrichment.RecentLookup: it
// returns the most recently persisted row for ip, if any.
func (s *Store) MostRecentEnrichedEventForIP(ctx context.Context, ip string) (model.EnrichedEvent, bool, error) {
	const q = `
		SELECT
			id, username, password, ip, protocol,
			hostname, city, region, country, loc, org, postal, timezone,
			asn, asn_name, asn_domain, asn_route, asn_type,
			company_name, company_domain, company_type,
			vpn, proxy, tor, relay, hosting, service,
			abuse_address, abuse_country, abuse_email, abuse_name, abuse_network, abuse_phone,
			domain_ip, domain_total, domains,
			timestamp
		FROM processed_individual
		WHERE ip = $1
		ORDER BY timestamp DESC
		LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, ip)

	var ee model.EnrichedEvent
	var domains pq.StringArray
	err := row.Scan(
		&ee.ID, &ee.Username, &ee.Password, &ee.IP, &ee.Protocol,
		&ee.Hostname, &ee.City, &ee.Region, &ee.Country, &ee.Loc, &ee.Org, &ee.Postal, &ee.Timezone,
		&ee.AsnASN, &ee.AsnName, &ee.AsnDomain, &ee.AsnRoute, &ee.AsnType,
		&ee.CompanyName, &ee.CompanyDomain, &ee.CompanyType,
		&ee.VPN, &ee.Proxy, &ee.Tor, &ee.Relay, &ee.Hosting, &ee.Service,
		&ee.AbuseAddress, &ee.AbuseCountry, &ee.AbuseEmail, &ee.AbuseName, &ee.AbuseNetwork, &ee.AbusePhone,
		&ee.DomainIP, &ee.DomainTotal, &domains,
		&ee.Timestamp,
	)
	if err == sql.ErrNoRows {
		return model.EnrichedEvent{}, false, nil
	}
	if err != nil {
		return model.EnrichedEvent{}, false, fmt.Errorf("store: querying most recent enriched event for %s: %w", ip, err)
	}
	ee.Domains = []string(domains)
	return ee, true, nil
}

// UpsertLeaderboard increments the (key, amount) row for table by delta,
// inserting it with amount=delta if it does not yet exist. table must be
// one of the fixed leaderboard table names below — never derived from
// caller input.
func (s *Store) UpsertLeaderboard(ctx context.Context, table, key string, delta int64) (model.LeaderboardRow, error) {
	if !isLeaderboardTable(table) {
		return model.LeaderboardRow{}, fmt.Errorf("store: unknown leaderboard table %q", table)
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (key, amount)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET amount = %s.amount + EXCLUDED.amount
		RETURNING key, amount`, table, table)
	var row model.LeaderboardRow
	err := s.db.QueryRowContext(ctx, q, key, delta).Scan(&row.Key, &row.Amount)
	if err != nil {
		return model.LeaderboardRow{}, fmt.Errorf("store: upserting %s[%s]: %w", table, key, err)
	}
	return row, nil
}

// UpsertCombo increments the (username, password) composite leaderboard.
// The id returned on conflict is the row's original id, never the fresh
// one generated for this call — Postgres returns the post-update row for
// an ON CONFLICT DO UPDATE, so the pre-existing id always wins.
func (s *Store) UpsertCombo(ctx context.Context, freshID, username, password string, delta int64) (model.ComboRow, error) {
	const q = `
		INSERT INTO top_usr_pass_combo (id, username, password, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username, password) DO UPDATE SET amount = top_usr_pass_combo.amount + EXCLUDED.amount
		RETURNING id, username, password, amount`
	var row model.ComboRow
	err := s.db.QueryRowContext(ctx, q, freshID, username, password, delta).
		Scan(&row.ID, &row.Username, &row.Password, &row.Amount)
	if err != nil {
		return model.ComboRow{}, fmt.Errorf("store: upserting combo %s/%s: %w", username, password, err)
	}
	return row, nil
}

// AdvanceBucket implements the time-bucket advance rule of spec §3/§4.3:
// open a new bucket row if none exists or the latest is older than
// widthMs, otherwise increment it. This read-then-decide pattern is only
// safe because the Aggregator is single-threaded — see spec §9.
func (s *Store) AdvanceBucket(ctx context.Context, table string, now, widthMs int64) (model.BucketRow, error) {
	if !isBucketTable(table) {
		return model.BucketRow{}, fmt.Errorf("store: unknown bucket table %q", table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BucketRow{}, fmt.Errorf("store: starting bucket tx for %s: %w", table, err)
	}
	defer tx.Rollback()

	selectQ := fmt.Sprintf(`SELECT timestamp, amount FROM %s ORDER BY timestamp DESC LIMIT 1 FOR UPDATE`, table)
	var latest model.BucketRow
	err = tx.QueryRowContext(ctx, selectQ).Scan(&latest.Timestamp, &latest.Amount)

	switch {
	case err == sql.ErrNoRows || (err == nil && now-latest.Timestamp > widthMs):
		insertQ := fmt.Sprintf(`INSERT INTO %s (timestamp, amount) VALUES ($1, 1) RETURNING timestamp, amount`, table)
		var row model.BucketRow
		if scanErr := tx.QueryRowContext(ctx, insertQ, now).Scan(&row.Timestamp, &row.Amount); scanErr != nil {
			return model.BucketRow{}, fmt.Errorf("store: opening new bucket in %s: %w", table, scanErr)
		}
		if err := tx.Commit(); err != nil {
			return model.BucketRow{}, fmt.Errorf("store: committing new bucket in %s: %w", table, err)
		}
		return row, nil
	case err != nil:
		return model.BucketRow{}, fmt.Errorf("store: selecting latest bucket in %s: %w", table, err)
	default:
		updateQ := fmt.Sprintf(`UPDATE %s SET amount = amount + 1 WHERE timestamp = $1 RETURNING timestamp, amount`, table)
		var row model.BucketRow
		if scanErr := tx.QueryRowContext(ctx, updateQ, latest.Timestamp).Scan(&row.Timestamp, &row.Amount); scanErr != nil {
			return model.BucketRow{}, fmt.Errorf("store: incrementing bucket in %s: %w", table, scanErr)
		}
		if err := tx.Commit(); err != nil {
			return model.BucketRow{}, fmt.Errorf("store: committing bucket increment in %s: %w", table, err)
		}
		return row, nil
	}
}

var leaderboardTables = map[string]bool{
	"top_username": true, "top_password": true, "top_ip": true, "top_protocol": true,
	"top_city": true, "top_region": true, "top_country": true, "top_timezone": true,
	"top_org": true, "top_postal": true,
}

func isLeaderboardTable(t string) bool { return leaderboardTables[t] }

var bucketTables = map[string]bool{
	"top_hourly": true, "top_daily": true, "top_weekly": true, "top_yearly": true,
}

func isBucketTable(t string) bool { return bucketTables[t] }
