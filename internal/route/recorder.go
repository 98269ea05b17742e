package route

// Recorder receives counts of route editing outcomes.
type Recorder interface {
	RecordMutation(op string)
	RecordRejected(op string)
	RecordCommit()
	RecordDiscardedCommit()
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(string)  {}
func (nopRecorder) RecordRejected(string)  {}
func (nopRecorder) RecordCommit()          {}
func (nopRecorder) RecordDiscardedCommit() {}
