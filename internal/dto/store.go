package dto

// InsertOutcome classifies a single insert attempt so the retry driver can
// switch on it instead of inspecting driver error codes.
type InsertOutcome int

const (
	InsertOK InsertOutcome = iota
	InsertConflict
	InsertTransient
)

func (o InsertOutcome) String() string {
	switch o {
	case InsertOK:
		return "ok"
	case InsertConflict:
		return "conflict"
	default:
		return "transient"
	}
}

type InsertResult struct {
	Outcome InsertOutcome
	Err     error // set for InsertTransient
}

func InsertSucceeded() InsertResult { return InsertResult{Outcome: InsertOK} }
func InsertDuplicate() InsertResult { return InsertResult{Outcome: InsertConflict} }
func InsertFailed(err error) InsertResult { return InsertResult{Outcome: InsertTransient, Err: err} }
