package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Position{},
		&Candidate{},
		&CandidatePositionMatch{},
		&AllocationHistory{},
		&AuditLog{},
		&CandidateSnapshot{},
		&IntakeJob{},
	}
}
