package ports

type MatchMetrics interface {
	RecordTurnCompleted()
	RecordTurnSkipped()
	RecordSuspension()
	RecordResumption()
	RecordMatchStarted()
	RecordMatchFinished()
}

type ProtocolMetrics interface {
	RecordProtocolViolation(kind string)
}
