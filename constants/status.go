package constants

// RunState is the batch orchestrator's state machine position.
type RunState string

const (
	StateIdle           RunState = "IDLE"
	StateParsingInput   RunState = "PARSING_INPUT"   // archive expansion / input classification
	StateParsingFile    RunState = "PARSING_FILE"    // text extraction for the current document
	StateCallingService RunState = "CALLING_SERVICE" // extraction service in flight
	StateSuccess        RunState = "SUCCESS"         // every document attempted
	StateError          RunState = "ERROR"           // run-scoped failure
)

// Terminal reports whether no further transitions follow.
func (s RunState) Terminal() bool {
	return s == StateSuccess || s == StateError
}

// Stage is the per-document progress stage.
type Stage string

const (
	StageExtractingText  Stage = "EXTRACTING_TEXT"
	StageQueryingService Stage = "QUERYING_SERVICE"
)
