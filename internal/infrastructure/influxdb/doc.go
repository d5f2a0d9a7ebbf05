// Package influxdb provides InfluxDB connectivity for BioCore.
//
// It wraps the official influxdb-client-go v2 library with BioCore-specific
// patterns for connection management, reading mirroring, and health
// monitoring.
//
// # Purpose
//
// SQLite remains the system of record for readings. This package mirrors
// validated readings into InfluxDB so dashboarding tools can query long
// windows without loading the primary store. The mirror is best-effort:
// a down InfluxDB never blocks ingestion.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "fermwerk",
//	    Bucket: "readings",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteReading(r)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
