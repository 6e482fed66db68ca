package telemetry

// Config controls whether upload operations emit OpenTelemetry spans.
//
// The engine never ships its own OTLP exporter: a client-side upload
// library has no business deciding where traces go. When Enabled is true,
// spans are recorded against whatever global TracerProvider the host
// process has already configured (via otel.SetTracerProvider); when
// false, a no-op tracer is used and span creation costs nothing.
type Config struct {
	// Enabled indicates whether span creation uses the host's global
	// tracer provider instead of a no-op tracer.
	Enabled bool

	// ServiceName identifies this engine instance in spans it creates.
	ServiceName string
}

// DefaultConfig returns a default configuration with tracing disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		ServiceName: "storage-engine",
	}
}
