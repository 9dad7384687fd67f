package ir

// Version constants for IR schema and engine.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// EngineVersion is the distlab engine version.
	EngineVersion = "0.1.0"
)
