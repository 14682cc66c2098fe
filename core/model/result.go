package model

// Assignment maps agent ids to the objective ids they serve. For routing
// solvers each list is the visit order.
type Assignment map[string][]string

// Count returns the number of assigned objectives.
func (a Assignment) Count() int {
	n := 0
	for _, ids := range a {
		n += len(ids)
	}
	return n
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// SolveResult is the outcome of one solve call.
type SolveResult struct {
	Assigned   Assignment  `json:"assignments"`
	Unassigned []Objective `json:"unassigned"`
	Parameters Constraints `json:"parameters"`
}

// AgentFor returns the agent serving objectiveID.
func (r SolveResult) AgentFor(objectiveID string) (string, bool) {
	for agent, ids := range r.Assigned {
		for _, id := range ids {
			if id == objectiveID {
				return agent, true
			}
		}
	}
	return "", false
}

// Total returns assigned plus unassigned objectives.
func (r SolveResult) Total() int { return r.Assigned.Count() + len(r.Unassigned) }

// EmptyResult returns a result where every objective is unassigned.
func EmptyResult(objectives []Objective, params Constraints) SolveResult {
	return SolveResult{
		Assigned:   Assignment{},
		Unassigned: Unassigned(objectives),
		Parameters: params,
	}
}

// Unassigned copies objectives with Assigned cleared.
func Unassigned(objectives []Objective) []Objective {
	out := make([]Objective, len(objectives))
	for i, o := range objectives {
		o.Assigned = false
		out[i] = o
	}
	return out
}

// BuildResult assembles a SolveResult from an objective index -> agent index
// choice. Negative entries are unassigned. Objectives keep their input
// order within each agent list.
func BuildResult(agents []Agent, objectives []Objective, choice []int, params Constraints) SolveResult {
	res := SolveResult{Assigned: Assignment{}, Unassigned: []Objective{}, Parameters: params}
	for j, o := range objectives {
		i := choice[j]
		if i < 0 {
			o.Assigned = false
			res.Unassigned = append(res.Unassigned, o)
			continue
		}
		id := agents[i].ID
		res.Assigned[id] = append(res.Assigned[id], o.ID)
	}
	return res
}
