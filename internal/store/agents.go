package store

import "github.com/starford/propdesk/internal/models"

func agentID(a models.Agent) string { return a.ID }

// AddAgent appends agent, generating an id when empty.
func (s *Store) AddAgent(agent models.Agent) models.Agent {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if agent.ID == "" {
			agent.ID = s.ids.NewID()
		}
		next.Agents = appendCopy(next.Agents, agent)
		return Change{Topic: TopicAgentCreated, ID: agent.ID, Notice: success("Agent added successfully!")}, true
	})
	return agent
}

// UpdateAgent merges patch into the agent with the given id.
func (s *Store) UpdateAgent(id string, patch AgentPatch) (models.Agent, bool) {
	var updated models.Agent
	ok := s.mutate(func(next *Snapshot) (Change, bool) {
		agents, last, found := replaceWhere(next.Agents, id, agentID, patch.Apply)
		if !found {
			return Change{}, false
		}
		next.Agents = agents
		updated = last
		return Change{Topic: TopicAgentUpdated, ID: id, Notice: success("Agent updated successfully!")}, true
	})
	return updated, ok
}

// DeleteAgent removes every agent with the given id. Leads assigned to the
// agent keep their AssignedAgent value.
func (s *Store) DeleteAgent(id string) int {
	var removed int
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Agents, removed = removeWhere(next.Agents, id, agentID)
		if removed == 0 {
			return Change{}, false
		}
		return Change{Topic: TopicAgentDeleted, ID: id, Notice: success("Agent deleted successfully!")}, true
	})
	return removed
}

// ReplaceAgents swaps the whole agent roster.
func (s *Store) ReplaceAgents(agents []models.Agent) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.Agents = append([]models.Agent{}, agents...)
		return Change{Topic: TopicAgentsReplaced}, true
	})
}
