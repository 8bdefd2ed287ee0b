package models

// JobSubmitted is published when a batch recognition job has been started.
type JobSubmitted struct {
	EventType   string `json:"eventType"`
	OperationID string `json:"operationId"`
	StagingKey  string `json:"stagingKey"`
	Token       string `json:"token"`
	Timestamp   int64  `json:"timestamp"`
}

// JobCompleted is published when a transcript has been extracted and the
// final text returned to the caller.
type JobCompleted struct {
	EventType   string `json:"eventType"`
	OperationID string `json:"operationId"`
	Token       string `json:"token"`
	Timestamp   int64  `json:"timestamp"`
	Text        string `json:"text"`
	RawText     string `json:"rawText"`
	TouchedUp   bool   `json:"touchedUp"`
}
