package mqtt

// Publisher sends raw payloads to a broker topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Topic suffixes appended to the configured prefix.
const (
	TopicPlanGenerated    = "plan/generated"
	TopicDayMissed        = "day/missed"
	TopicSessionCompleted = "session/completed"
	TopicCommandDone      = "command/session/done"
	TopicCommandAck       = "command/ack"
)

// Envelope wraps every event published on the broker.
type Envelope struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// DoneCommand asks the service to mark a session done.
type DoneCommand struct {
	CommandID string `json:"command_id"`
	SessionID string `json:"session_id"`
}

// CommandAck answers a DoneCommand.
type CommandAck struct {
	CommandID string `json:"command_id"`
	SessionID string `json:"session_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
