// Package model holds the canonical shapes of a credential attempt as it
// moves through the pipeline: the raw Event, the enriched record, and the
// leaderboard/time-bucket rows derived from it.
package model

// Event is a single observed credential attempt, admitted by the Credential
// Sink. Username, Password, IP and Protocol are caller-supplied; ID and
// Timestamp are assigned by the Aggregator on admission.
type Event struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	IP        string `json:"ip"`
	Protocol  string `json:"protocol"`
	Timestamp int64  `json:"timestamp"`
}

// Asn carries autonomous-system information for an IP, as reported by the
// IP-intelligence provider. All fields are optional and default to zero
// values when the provider has nothing to say.
type Asn struct {
	ASN    string `json:"asn"`
	Name   string `json:"asn_name"`
	Domain string `json:"asn_domain"`
	Route  string `json:"asn_route"`
	Type   string `json:"asn_type"`
}

// Company carries the organization believed to operate an IP.
type Company struct {
	Name   string `json:"company_name"`
	Domain string `json:"company_domain"`
	Type   string `json:"company_type"`
}

// Privacy carries anonymization signals for an IP.
type Privacy struct {
	VPN     bool   `json:"vpn"`
	Proxy   bool   `json:"proxy"`
	Tor     bool   `json:"tor"`
	Relay   bool   `json:"relay"`
	Hosting bool   `json:"hosting"`
	Service string `json:"service"`
}

// Abuse carries the abuse-contact record for an IP's owning network.
type Abuse struct {
	Address string `json:"address"`
	Country string `json:"country"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Network string `json:"network"`
	Phone   string `json:"phone"`
}

// Domains summarizes hostnames observed sharing an IP.
type Domains struct {
	IP      string   `json:"domain_ip"`
	Total   int64    `json:"domain_total"`
	Domains []string `json:"domains"`
}

// Enrichment is every field the IP-intelligence provider can contribute for
// a given IP. It is embedded into EnrichedEvent and also used as the return
// shape of the enrichment cache (internal/enrichment).
type Enrichment struct {
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`

	Asn     Asn     `json:"asn_info"`
	Company Company `json:"company_info"`
	Privacy Privacy `json:"privacy_info"`
	Abuse   Abuse   `json:"abuse_info"`
	Domains Domains `json:"domains_info"`
}

// EnrichedEvent is an Event with IP-intelligence fields attached. Its
// Timestamp is always copied from the originating Event — it is never
// refreshed when the enrichment cache serves a hit (spec invariant: the
// enriched row's clock is the attempt's clock, not the ingestion clock).
type EnrichedEvent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	IP       string `json:"ip"`
	Protocol string `json:"protocol"`

	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`

	AsnASN        string `json:"asn"`
	AsnName       string `json:"asn_name"`
	AsnDomain     string `json:"asn_domain"`
	AsnRoute      string `json:"asn_route"`
	AsnType       string `json:"asn_type"`
	CompanyName   string `json:"company_name"`
	CompanyDomain string `json:"company_domain"`
	CompanyType   string `json:"company_type"`
	VPN           bool   `json:"vpn"`
	Proxy         bool   `json:"proxy"`
	Tor           bool   `json:"tor"`
	Relay         bool   `json:"relay"`
	Hosting       bool   `json:"hosting"`
	Service       string `json:"service"`
	AbuseAddress  string `json:"address"`
	AbuseCountry  string `json:"abuse_country"`
	AbuseEmail    string `json:"email"`
	AbuseName     string `json:"abuse_name"`
	AbuseNetwork  string `json:"network"`
	AbusePhone    string `json:"phone"`
	DomainIP      string `json:"domain_ip"`
	DomainTotal   int64  `json:"domain_total"`
	Domains       []string `json:"domains"`

	Timestamp int64 `json:"timestamp"`
}

// NewEnrichedEvent combines an admitted Event with its resolved enrichment
// fields, per Aggregator pipeline step 4.
func NewEnrichedEvent(e Event, enr Enrichment) EnrichedEvent {
	return EnrichedEvent{
		ID:            e.ID,
		Username:      e.Username,
		Password:      e.Password,
		IP:            e.IP,
		Protocol:      e.Protocol,
		Hostname:      enr.Hostname,
		City:          enr.City,
		Region:        enr.Region,
		Country:       enr.Country,
		Loc:           enr.Loc,
		Org:           enr.Org,
		Postal:        enr.Postal,
		Timezone:      enr.Timezone,
		AsnASN:        enr.Asn.ASN,
		AsnName:       enr.Asn.Name,
		AsnDomain:     enr.Asn.Domain,
		AsnRoute:      enr.Asn.Route,
		AsnType:       enr.Asn.Type,
		CompanyName:   enr.Company.Name,
		CompanyDomain: enr.Company.Domain,
		CompanyType:   enr.Company.Type,
		VPN:           enr.Privacy.VPN,
		Proxy:         enr.Privacy.Proxy,
		Tor:           enr.Privacy.Tor,
		Relay:         enr.Privacy.Relay,
		Hosting:       enr.Privacy.Hosting,
		Service:       enr.Privacy.Service,
		AbuseAddress:  enr.Abuse.Address,
		AbuseCountry:  enr.Abuse.Country,
		AbuseEmail:    enr.Abuse.Email,
		AbuseName:     enr.Abuse.Name,
		AbuseNetwork:  enr.Abuse.Network,
		AbusePhone:    enr.Abuse.Phone,
		DomainIP:      enr.Domains.IP,
		DomainTotal:   enr.Domains.Total,
		Domains:       enr.Domains.Domains,
		Timestamp:     e.Timestamp,
	}
}

// LeaderboardRow is a single (key, count) pair from any top_* table.
type LeaderboardRow struct {
	Key    string `json:"key"`
	Amount int64  `json:"amount"`
}

// ComboRow is a top_usr_pass_combo row: a composite-keyed leaderboard with
// its own synthetic id, preserved across increments.
type ComboRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Amount   int64  `json:"amount"`
}

// BucketRow is a single row of a time-bucket counter table.
type BucketRow struct {
	Timestamp int64 `json:"timestamp"`
	Amount    int64 `json:"amount"`
}

// Bucket widths in milliseconds, per spec §3.
const (
	HourlyWidthMs = 3_600_000
	DailyWidthMs  = 86_400_000
	WeeklyWidthMs = 604_800_000
	YearlyWidthMs = 31_556_800_000
)
