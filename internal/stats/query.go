package stats

// Query selects linked resources. Empty Agents or Activities, or a filter
// containing the matching "any" term, does not restrict that dimension.
// A Limit of zero or less means unlimited.
type Query struct {
	Agents     []string `json:"agents,omitempty"`
	Activities []string `json:"activities,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// LinkedResources starts a query over every linked resource.
func LinkedResources() Query {
	return Query{}
}

// WithAgents restricts the query to resources linked under agents.
func (q Query) WithAgents(agents ...string) Query {
	q.Agents = append([]string(nil), agents...)
	return q
}

// WithActivities restricts the query to resources linked to activities.
func (q Query) WithActivities(activities ...string) Query {
	q.Activities = append([]string(nil), activities...)
	return q
}

// WithLimit caps the number of results.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

func (q Query) concreteAgents() []string {
	return concrete(q.Agents)
}

// concrete returns agents, or nil when it places no restriction.
func concrete(agents []string) []string {
	if len(agents) == 0 {
		return nil
	}
	for _, a := range agents {
		if a == AnyAgent {
			return nil
		}
	}
	return agents
}
