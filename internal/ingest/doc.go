// Package ingest connects MQTT telemetry to the reading log.
//
// Devices publish observation documents to their telemetry topic
// (biocore/telemetry/{entity_id}/reading). The service subscribes with a
// single wildcard, decodes each payload, and hands it to the reading log,
// which runs the full validation policy. Accepted readings are optionally
// mirrored to InfluxDB; rejected ones are reported on the device's
// rejection topic so field engineers can see why data is missing.
//
// Handler errors never crash the pipeline: a malformed payload costs one
// message, nothing more.
package ingest
