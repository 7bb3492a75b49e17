package entity

type Status string

const (
	// outbox events
	Pending    Status = "pending"
	Processing Status = "processing"

	// stored objects: bytes are in the bucket, thumbnail not rendered yet
	Stored Status = "stored"

	// shared
	Processed Status = "processed"
	Failed    Status = "failed"
)
