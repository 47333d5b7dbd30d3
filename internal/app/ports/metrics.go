package ports

type ActionMetrics interface {
	RecordSuccess(actionID string)
	RecordConflict()
	RecordFailure()
}
