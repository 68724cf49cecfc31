package constants

// Centralized constants for headers, env keys and Gemini integration.
const (
	// Environment variable keys
	EnvConfigPath        = "BIOGENESIS_CONFIG"
	EnvDatabasePath      = "BIOGENESIS_DB"
	EnvListenAddr        = "BIOGENESIS_ADDR"
	EnvLogLevel          = "BIOGENESIS_LOG_LEVEL"
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvGeminiAccessToken = "GEMINI_ACCESS_TOKEN"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	HeaderGoogAPIKey  = "x-goog-api-key"

	ContentTypeJSON = "application/json"

	// Gemini API endpoints and base URL
	GeminiBaseURL          = "https://generativelanguage.googleapis.com"
	GeminiGenerateFmt      = "/v1beta/models/%s:generateContent"
	GeminiModel            = "gemini-2.5-flash"
	GeminiResponseMimeType = "application/json"
	GeminiRoleUser         = "user"
)

var (
	// Scopes requested when falling back to application default credentials
	GeminiScopes = []string{"https://www.googleapis.com/auth/generative-language", "https://www.googleapis.com/auth/cloud-platform"}
)

// Routes used by the backend router
const (
	RouteAPIPrefix     = "/api"
	RouteSpecies       = "/species"
	RouteCombos        = "/combos"
	RouteLeaderboard   = "/leaderboard"
	RouteVersion       = "/version"
	RouteRuns          = "/runs"
	RouteRunByID       = "/runs/:runID"
	RouteRunBegin      = "/runs/:runID/begin"
	RouteRunSpecies    = "/runs/:runID/species"
	RouteRunCycleSlot  = "/runs/:runID/slots/:index/cycle"
	RouteRunPrediction = "/runs/:runID/prediction"
	RouteRunCommit     = "/runs/:runID/commit"
	RouteRunNext       = "/runs/:runID/next"
	RouteRunRestart    = "/runs/:runID/restart"
	RouteRunSummary    = "/runs/:runID/summary"
	RouteRunRecord     = "/runs/:runID/record"
	RouteHealth        = "/healthz"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrInvalidRunID           = "Invalid run ID"
	ErrInvalidSlotIndex       = "Invalid slot index"
	ErrRunNotFound            = "Run not found"
	ErrSpeciesNotFound        = "Species not found"
	ErrFailedFetchSpecies     = "Failed to fetch species"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedFetchRecord      = "Failed to fetch run record"
	ErrRecordNotFound         = "Run record not found"
	ErrInvalidAttempt         = "Invalid attempt"
	ErrActionsLocked          = "Actions are locked; waiting on the current scan or evaluation"
	ErrInvalidPhase           = "Action not allowed in the current phase"
	ErrMutationBudget         = "Only one historical slot may be mutated per round"
	ErrSlotOutOfRange         = "Slot index out of range"
)

// Logging field names
const (
	LogFieldRunID      = "run_id"
	LogFieldRound      = "round"
	LogFieldPhase      = "phase"
	LogFieldSpecies    = "species"
	LogFieldSequence   = "sequence"
	LogFieldDamage     = "damage"
	LogFieldBaseDamage = "base_damage"
	LogFieldHealth     = "health"
	LogFieldScore      = "score"
	LogFieldKey        = "key"
	LogFieldAddr       = "addr"
	LogFieldModel      = "model"
	LogFieldDuration   = "duration_ms"
)
