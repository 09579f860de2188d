package ir

// Version constants for the document model and engine.
const (
	// DocumentVersion is the flattened document schema version.
	DocumentVersion = "1"

	// EngineVersion is the calcdocs engine version.
	EngineVersion = "0.1.0"
)
