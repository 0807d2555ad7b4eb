package eval

// RecordKind tags the variant of an event record (spec §4.4). The set
// mirrors the tagged-union record types the event recorder maintains;
// eval only needs to name which kind is opening/closing, not the payload
// shape, so it stays a plain string-backed enum rather than depending on
// internal/record's node types directly.
type RecordKind string

const (
	RecordFile             RecordKind = "FileCheck"
	RecordRule             RecordKind = "RuleCheck"
	RecordRuleCondition    RecordKind = "RuleCondition"
	RecordTypeCheck        RecordKind = "TypeCheck"
	RecordTypeBlock        RecordKind = "TypeBlock"
	RecordWhenCheck        RecordKind = "WhenCheck"
	RecordBlockCheck       RecordKind = "GuardClauseBlockCheck"
	RecordBlockGuardCheck  RecordKind = "BlockGuardCheck"
	RecordDisjunction      RecordKind = "Disjunction"
	RecordFilter           RecordKind = "Filter"
	RecordClauseValueCheck RecordKind = "ClauseValueCheck"
	RecordDependentRule    RecordKind = "DependentRule"
)

// Detail carries the from/to diagnostic payload a completed record stores
// alongside its Status (spec §4.4: "Each carries the relevant Status and
// the from/to values for diagnostics").
type Detail struct {
	Label   string
	From    string
	To      string
	Unary   bool
	Message string
}

// Recorder is the capability eval needs from the event recorder: open a
// record, and close the most recently opened one with its outcome.
// Defined here (not in internal/record) so eval has no import-time
// dependency on the recorder's concrete tree representation — the same
// inversion query.Env uses to keep internal/query independent of
// internal/eval.
type Recorder interface {
	Start(kind RecordKind, label string) int
	End(handle int, status Status, detail Detail)
}

// nopRecorder discards every event; Evaluate uses it when the caller passes
// a nil Recorder because it does not need a trace.
type nopRecorder struct{}

func (nopRecorder) Start(RecordKind, string) int           { return 0 }
func (nopRecorder) End(int, Status, Detail)                {}
