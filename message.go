package workflow

// Message wraps a payload in transit between executors. Messages are
// created by handlers, consumed exactly once by the scheduler in the next
// superstep (or buffered by a fan-in group until release), then discarded.
type Message struct {
	// Data is the opaque payload. The core never interprets it except for
	// type-based dispatch.
	Data any

	// SourceID identifies the executor that produced this message.
	SourceID string

	// TargetID, if set, forces delivery to one specific neighbor,
	// bypassing any fan-out selection function.
	TargetID string
}

// NewMessage constructs a Message from an executor with no forced target.
func NewMessage(sourceID string, data any) Message {
	return Message{Data: data, SourceID: sourceID}
}

// NewTargetedMessage constructs a Message that bypasses edge-group
// selection and is delivered only to targetID.
func NewTargetedMessage(sourceID, targetID string, data any) Message {
	return Message{Data: data, SourceID: sourceID, TargetID: targetID}
}
