// Package telemetry provides OpenTelemetry tracing and metrics for outguard.
//
// Scans and incident reports emit spans when telemetry is enabled, and the
// HTTP surface records request metrics through the meter provider. Both are
// exported over OTLP (gRPC or HTTP/protobuf) to a collector. Telemetry is off
// by default and a failure to initialize it never stops the service: the
// instance degrades to no-op providers.
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	tracer := tel.Tracer("outguard.scan")
//	meter := tel.Meter("outguard.http")
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
