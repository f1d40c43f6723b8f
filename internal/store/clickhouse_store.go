package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cybercommand/internal/client"
	"cybercommand/internal/models"
	"cybercommand/internal/util"
)

// ClickHouseStore is the production event store. All event tables carry an
// epoch_id column; readers always filter on it so a staged build stays
// invisible until the epoch pointer moves.
type ClickHouseStore struct {
	ch *client.ClickHouseClient
}

func NewClickHouseStore(ch *client.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{ch: ch}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		epoch_id String,
		user_id String,
		username String,
		email String,
		first_name String,
		last_name String,
		department String,
		title String,
		employee_type String,
		security_clearance String,
		location String,
		privileged Bool,
		risk_score Float64,
		created_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	ORDER BY (epoch_id, user_id)`,

	`CREATE TABLE IF NOT EXISTS assets (
		epoch_id String,
		asset_id String,
		hostname String,
		ip_address String,
		mac_address String,
		asset_type String,
		operating_system String,
		location String,
		criticality String,
		security_zone String,
		vulnerability_score Float64,
		created_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	ORDER BY (epoch_id, asset_id)`,

	`CREATE TABLE IF NOT EXISTS threat_indicators (
		epoch_id String,
		indicator_id String,
		indicator String,
		indicator_type String,
		threat_type String,
		threat_family String,
		source String,
		confidence_score Float64,
		severity String,
		first_seen DateTime64(3, 'UTC'),
		last_seen DateTime64(3, 'UTC'),
		is_active Bool
	) ENGINE = MergeTree()
	ORDER BY (epoch_id, indicator_type, indicator)`,

	`CREATE TABLE IF NOT EXISTS network_events (
		epoch_id String,
		log_id String,
		event_bucket Int64,
		event_time DateTime64(3, 'UTC'),
		source_ip String,
		destination_ip String,
		destination_domain String,
		source_port UInt16,
		destination_port UInt16,
		protocol String,
		application_protocol String,
		bytes_sent UInt64,
		bytes_received UInt64,
		bytes_transferred UInt64,
		duration_ms UInt32,
		connection_state String,
		user_id String,
		session_id String,
		threat_score Float64,
		geo_country String,
		geo_city String,
		geo_latitude Float64,
		geo_longitude Float64,
		geo_threat_level String
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMMDD(event_time)
	ORDER BY (epoch_id, event_bucket, event_time)`,

	`CREATE TABLE IF NOT EXISTS auth_events (
		epoch_id String,
		log_id String,
		event_bucket Int64,
		event_time DateTime64(3, 'UTC'),
		user_id String,
		department String,
		title String,
		auth_method String,
		auth_result String,
		failure_reason String,
		source_ip String,
		geo_country String,
		geo_city String,
		geo_latitude Float64,
		geo_longitude Float64,
		risk_score Float64,
		mfa_method String,
		device_trust_level String
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMMDD(event_time)
	ORDER BY (epoch_id, event_bucket, event_time)`,

	`CREATE TABLE IF NOT EXISTS run_summaries (
		run_id String,
		epoch_id String,
		status String,
		seed Int64,
		started_at DateTime64(3, 'UTC'),
		finished_at DateTime64(3, 'UTC'),
		users_written UInt64,
		assets_written UInt64,
		indicators_written UInt64,
		network_written UInt64,
		auth_written UInt64,
		injected_written UInt64
	) ENGINE = MergeTree()
	ORDER BY (started_at, run_id)`,
}

// EnsureSchema creates the event-store tables if they do not exist
func (s *ClickHouseStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := s.ch.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) WriteUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{
			u.EpochID, u.UserID, u.Username, u.Email, u.FirstName, u.LastName,
			u.Department, u.Title, u.EmployeeType, u.SecurityClearance,
			u.Location, u.Privileged, u.RiskScore, u.CreatedAt,
		})
	}
	return s.ch.BatchInsert(ctx, "INSERT INTO users", rows)
}

func (s *ClickHouseStore) WriteAssets(ctx context.Context, assets []models.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []interface{}{
			a.EpochID, a.AssetID, a.Hostname, a.IPAddress, a.MACAddress,
			a.AssetType, a.OperatingSystem, a.Location, a.Criticality,
			a.SecurityZone, a.VulnerabilityScore, a.CreatedAt,
		})
	}
	return s.ch.BatchInsert(ctx, "INSERT INTO assets", rows)
}

func (s *ClickHouseStore) WriteIndicators(ctx context.Context, indicators []models.ThreatIndicator) error {
	if len(indicators) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(indicators))
	for _, ind := range indicators {
		rows = append(rows, []interface{}{
			ind.EpochID, ind.IndicatorID, ind.Indicator, ind.IndicatorType,
			ind.ThreatType, ind.ThreatFamily, ind.Source, ind.ConfidenceScore,
			ind.Severity, ind.FirstSeen, ind.LastSeen, ind.IsActive,
		})
	}
	return s.ch.BatchInsert(ctx, "INSERT INTO threat_indicators", rows)
}

func (s *ClickHouseStore) WriteNetworkEvents(ctx context.Context, events []models.NetworkEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{
			e.EpochID, e.LogID, int64(e.EventBucket), e.EventTime,
			e.SourceIP, e.DestinationIP, e.DestinationDomain,
			e.SourcePort, e.DestinationPort, e.Protocol, e.ApplicationProtocol,
			e.BytesSent, e.BytesReceived, e.BytesTransferred,
			e.DurationMs, e.ConnectionState, e.UserID, e.SessionID,
			e.ThreatScore, e.GeoCountry, e.GeoCity, e.GeoLatitude,
			e.GeoLongitude, e.GeoThreatLevel,
		})
	}
	return s.ch.BatchInsert(ctx, "INSERT INTO network_events", rows)
}

func (s *ClickHouseStore) WriteAuthEvents(ctx context.Context, events []models.AuthEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{
			e.EpochID, e.LogID, int64(e.EventBucket), e.EventTime,
			e.UserID, e.Department, e.Title, e.AuthMethod, e.AuthResult,
			e.FailureReason, e.SourceIP, e.GeoCountry, e.GeoCity,
			e.GeoLatitude, e.GeoLongitude, e.RiskScore, e.MFAMethod,
			e.DeviceTrustLevel,
		})
	}
	return s.ch.BatchInsert(ctx, "INSERT INTO auth_events", rows)
}

// WriteRunSummary persists the outcome of one generation run
func (s *ClickHouseStore) WriteRunSummary(ctx context.Context, summary models.RunSummary) error {
	return s.ch.BatchInsert(ctx, "INSERT INTO run_summaries", [][]interface{}{{
		summary.RunID, summary.EpochID, summary.Status, summary.Seed,
		summary.StartedAt, summary.FinishedAt,
		summary.UsersWritten, summary.AssetsWritten, summary.IndicatorsWritten,
		summary.NetworkWritten, summary.AuthWritten, summary.InjectedWritten,
	}})
}

func (s *ClickHouseStore) Users(ctx context.Context, epochID string) ([]models.User, error) {
	rows, err := s.ch.QueryRows(ctx, `
		SELECT epoch_id, user_id, username, email, first_name, last_name,
		       department, title, employee_type, security_clearance,
		       location, privileged, risk_score, created_at
		FROM users WHERE epoch_id = ?`, epochID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.EpochID, &u.UserID, &u.Username, &u.Email,
			&u.FirstName, &u.LastName, &u.Department, &u.Title,
			&u.EmployeeType, &u.SecurityClearance, &u.Location,
			&u.Privileged, &u.RiskScore, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *ClickHouseStore) Assets(ctx context.Context, epochID string) ([]models.Asset, error) {
	rows, err := s.ch.QueryRows(ctx, `
		SELECT epoch_id, asset_id, hostname, ip_address, mac_address,
		       asset_type, operating_system, location, criticality,
		       security_zone, vulnerability_score, created_at
		FROM assets WHERE epoch_id = ?`, epochID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.EpochID, &a.AssetID, &a.Hostname, &a.IPAddress,
			&a.MACAddress, &a.AssetType, &a.OperatingSystem, &a.Location,
			&a.Criticality, &a.SecurityZone, &a.VulnerabilityScore,
			&a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *ClickHouseStore) ActiveIndicators(ctx context.Context, epochID string) ([]models.ThreatIndicator, error) {
	rows, err := s.ch.QueryRows(ctx, `
		SELECT epoch_id, indicator_id, indicator, indicator_type, threat_type,
		       threat_family, source, confidence_score, severity,
		       first_seen, last_seen, is_active
		FROM threat_indicators WHERE epoch_id = ? AND is_active`, epochID)
	if err != nil {
		return nil, fmt.Errorf("failed to query threat indicators: %w", err)
	}
	defer rows.Close()

	var indicators []models.ThreatIndicator
	for rows.Next() {
		var ind models.ThreatIndicator
		if err := rows.Scan(&ind.EpochID, &ind.IndicatorID, &ind.Indicator,
			&ind.IndicatorType, &ind.ThreatType, &ind.ThreatFamily,
			&ind.Source, &ind.ConfidenceScore, &ind.Severity,
			&ind.FirstSeen, &ind.LastSeen, &ind.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan indicator row: %w", err)
		}
		indicators = append(indicators, ind)
	}
	return indicators, rows.Err()
}

func (s *ClickHouseStore) NetworkEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.NetworkEvent, error) {
	rows, err := s.ch.QueryRows(ctx, `
		SELECT epoch_id, log_id, event_bucket, event_time, source_ip,
		       destination_ip, destination_domain, source_port, destination_port,
		       protocol, application_protocol, bytes_sent, bytes_received,
		       bytes_transferred, duration_ms, connection_state, user_id,
		       session_id, threat_score, geo_country, geo_city, geo_latitude,
		       geo_longitude, geo_threat_level
		FROM network_events
		WHERE epoch_id = ? AND event_time >= ?
		ORDER BY event_time`, epochID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query network events: %w", err)
	}
	defer rows.Close()

	var events []models.NetworkEvent
	for rows.Next() {
		var (
			e      models.NetworkEvent
			bucket int64
		)
		if err := rows.Scan(&e.EpochID, &e.LogID, &bucket, &e.EventTime,
			&e.SourceIP, &e.DestinationIP, &e.DestinationDomain,
			&e.SourcePort, &e.DestinationPort, &e.Protocol,
			&e.ApplicationProtocol, &e.BytesSent, &e.BytesReceived,
			&e.BytesTransferred, &e.DurationMs, &e.ConnectionState,
			&e.UserID, &e.SessionID, &e.ThreatScore, &e.GeoCountry,
			&e.GeoCity, &e.GeoLatitude, &e.GeoLongitude,
			&e.GeoThreatLevel); err != nil {
			return nil, fmt.Errorf("failed to scan network event row: %w", err)
		}
		e.EventBucket = int(bucket)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *ClickHouseStore) AuthEventsSince(ctx context.Context, epochID string, since time.Time) ([]models.AuthEvent, error) {
	rows, err := s.ch.QueryRows(ctx, `
		SELECT epoch_id, log_id, event_bucket, event_time, user_id, department,
		       title, auth_method, auth_result, failure_reason, source_ip,
		       geo_country, geo_city, geo_latitude, geo_longitude, risk_score,
		       mfa_method, device_trust_level
		FROM auth_events
		WHERE epoch_id = ? AND event_time >= ?
		ORDER BY event_time`, epochID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth events: %w", err)
	}
	defer rows.Close()

	var events []models.AuthEvent
	for rows.Next() {
		var (
			e      models.AuthEvent
			bucket int64
		)
		if err := rows.Scan(&e.EpochID, &e.LogID, &bucket, &e.EventTime,
			&e.UserID, &e.Department, &e.Title, &e.AuthMethod, &e.AuthResult,
			&e.FailureReason, &e.SourceIP, &e.GeoCountry, &e.GeoCity,
			&e.GeoLatitude, &e.GeoLongitude, &e.RiskScore, &e.MFAMethod,
			&e.DeviceTrustLevel); err != nil {
			return nil, fmt.Errorf("failed to scan auth event row: %w", err)
		}
		e.EventBucket = int(bucket)
		events = append(events, e)
	}
	return events, rows.Err()
}

var epochScopedTables = []string{
	"users", "assets", "threat_indicators", "network_events", "auth_events",
}

// DeleteEpochsExcept issues lightweight deletes for rows of superseded epochs.
// Best effort: a failed cleanup leaves garbage rows that never match the
// current pointer.
func (s *ClickHouseStore) DeleteEpochsExcept(ctx context.Context, keepEpochID string) error {
	for _, table := range epochScopedTables {
		query := fmt.Sprintf("ALTER TABLE %s DELETE WHERE epoch_id != ?", table)
		if err := s.ch.Exec(ctx, query, keepEpochID); err != nil {
			util.Warn("epoch cleanup failed",
				zap.String("table", table),
				zap.String("keep_epoch", keepEpochID),
				zap.Error(err))
			return fmt.Errorf("failed to clean table %s: %w", table, err)
		}
	}
	return nil
}
