package store

// Topic names the kind of state change.
type Topic string

const (
	TopicLeadCreated          Topic = "lead.created"
	TopicLeadUpdated          Topic = "lead.updated"
	TopicLeadDeleted          Topic = "lead.deleted"
	TopicLeadsReplaced        Topic = "leads.replaced"
	TopicCommunicationCreated Topic = "communication.created"
	TopicAgentCreated         Topic = "agent.created"
	TopicAgentUpdated         Topic = "agent.updated"
	TopicAgentDeleted         Topic = "agent.deleted"
	TopicAgentsReplaced       Topic = "agents.replaced"
	TopicPropertyCreated      Topic = "property.created"
	TopicPropertyUpdated      Topic = "property.updated"
	TopicPropertyDeleted      Topic = "property.deleted"
	TopicPropertiesReplaced   Topic = "properties.replaced"
	TopicSessionUser          Topic = "session.user"
	TopicSessionLogout        Topic = "session.logout"
	TopicPreferencesUpdated   Topic = "preferences.updated"
)

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient confirmation shown to the user after a mutation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Change describes one successful mutation.
type Change struct {
	Topic Topic `json:"topic"`
	// ID is the affected record. For communications it is the lead id.
	ID     string  `json:"id,omitempty"`
	Notice *Notice `json:"notice,omitempty"`
	// Snapshot is the state right after the mutation.
	Snapshot *Snapshot `json:"-"`
}

// Listener receives changes synchronously while the writer lock is held.
// It may read from the store but must not mutate it.
type Listener func(Change)

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// emit delivers c in subscription order. Callers hold s.mu.
func (s *Store) emit(c Change) {
	c.Snapshot = s.current.Load()
	for i := 0; i < s.nextSub; i++ {
		if l, ok := s.listeners[i]; ok {
			l(c)
		}
	}
}

func success(msg string) *Notice {
	return &Notice{Level: NoticeSuccess, Message: msg}
}
