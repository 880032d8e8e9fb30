package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type ClickHouseClient struct {
	Conn clickhouse.Conn
}

// visit_events is append-only: rows are inserted at ingestion time and
// only ever read back by the aggregation queries.
const visitEventsDDL = `
CREATE TABLE IF NOT EXISTS visit_events (
    event_id          UUID,
    portfolio_id      String,
    case_study_id     String,
    visitor_ip        String,
    visitor_user_agent String,
    visitor_referrer  String,
    visitor_country   String,
    visitor_city      String,
    page_views        UInt32,
    time_spent        Float64,
    click_elements    Array(String),
    click_counts      Array(Int64),
    occurred_at       DateTime
)
ENGINE = MergeTree
ORDER BY (portfolio_id, occurred_at)
`

func NewClickHouseDB(cfg ClickHouseConfig) (*ClickHouseClient, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Database == "" {
		return nil, fmt.Errorf("ClickHouse host, port, and database name must be configured")
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "craftfolio-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Println("Successfully connected to ClickHouse database via Native TCP!")
	return &ClickHouseClient{Conn: conn}, nil
}

// EnsureSchema creates the visit_events table if it does not exist yet.
func (c *ClickHouseClient) EnsureSchema(ctx context.Context) error {
	if err := c.Conn.Exec(ctx, visitEventsDDL); err != nil {
		return fmt.Errorf("failed to create visit_events table: %w", err)
	}
	return nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		c.Conn.Close()
		log.Println("ClickHouse connection closed.")
	}
}
