package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/chomnr/brute-go/internal/model"
)

// RecentEnrichedEvents returns the limit most recent EnrichedEvent rows,
// ordered by timestamp DESC, for the event-log stats endpoint.
func (s *Store) RecentEnrichedEvents(ctx context.Context, limit int) ([]model.EnrichedEvent, error) {
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
		ORDER BY timestamp DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing recent enriched events: %w", err)
	}
	defer rows.Close()

	var out []model.EnrichedEvent
	for rows.Next() {
		var ee model.EnrichedEvent
		var domains pq.StringArray
		if err := rows.Scan(
			&ee.ID, &ee.Username, &ee.Password, &ee.IP, &ee.Protocol,
			&ee.Hostname, &ee.City, &ee.Region, &ee.Country, &ee.Loc, &ee.Org, &ee.Postal, &ee.Timezone,
			&ee.AsnASN, &ee.AsnName, &ee.AsnDomain, &ee.AsnRoute, &ee.AsnType,
			&ee.CompanyName, &ee.CompanyDomain, &ee.CompanyType,
			&ee.VPN, &ee.Proxy, &ee.Tor, &ee.Relay, &ee.Hosting, &ee.Service,
			&ee.AbuseAddress, &ee.AbuseCountry, &ee.AbuseEmail, &ee.AbuseName, &ee.AbuseNetwork, &ee.AbusePhone,
			&ee.DomainIP, &ee.DomainTotal, &domains,
			&ee.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("store: scanning recent enriched event row: %w", err)
		}
		ee.Domains = []string(domains)
		out = append(out, ee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating recent enriched events: %w", err)
	}
	return out, nil
}

// TopLeaderboard returns the limit highest-amount rows of table, ties
// broken by key ascending.
func (s *Store) TopLeaderboard(ctx context.Context, table string, limit int) ([]model.LeaderboardRow, error) {
	if !isLeaderboardTable(table) {
		return nil, fmt.Errorf("store: unknown leaderboard table %q", table)
	}
	q := fmt.Sprintf(`SELECT key, amount FROM %s ORDER BY amount DESC, key ASC LIMIT $1`, table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing top rows of %s: %w", table, err)
	}
	defer rows.Close()

	var out []model.LeaderboardRow
	for rows.Next() {
		var row model.LeaderboardRow
		if err := rows.Scan(&row.Key, &row.Amount); err != nil {
			return nil, fmt.Errorf("store: scanning %s row: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating %s: %w", table, err)
	}
	return out, nil
}

// TopCombos returns the limit highest-amount username/password combos.
func (s *Store) TopCombos(ctx context.Context, limit int) ([]model.ComboRow, error) {
	const q = `
		SELECT id, username, password, amount
		FROM top_usr_pass_combo
		ORDER BY amount DESC, username ASC, password ASC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing top combos: %w", err)
	}
	defer rows.Close()

	var out []model.ComboRow
	for rows.Next() {
		var row model.ComboRow
		if err := rows.Scan(&row.ID, &row.Username, &row.Password, &row.Amount); err != nil {
			return nil, fmt.Errorf("store: scanning combo row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating top combos: %w", err)
	}
	return out, nil
}

// RecentBuckets returns the limit most recent rows of a time-bucket table,
// ordered by timestamp DESC.
func (s *Store) RecentBuckets(ctx context.Context, table string, limit int) ([]model.BucketRow, error) {
	if !isBucketTable(table) {
		return nil, fmt.Errorf("store: unknown bucket table %q", table)
	}
	q := fmt.Sprintf(`SELECT timestamp, amount FROM %s ORDER BY timestamp DESC LIMIT $1`, table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing recent buckets of %s: %w", table, err)
	}
	defer rows.Close()

	var out []model.BucketRow
	for rows.Next() {
		var row model.BucketRow
		if err := rows.Scan(&row.Timestamp, &row.Amount); err != nil {
			return nil, fmt.Errorf("store: scanning %s row: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating %s: %w", table, err)
	}
	return out, nil
}
