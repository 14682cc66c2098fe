package model

// Cluster is an independently solvable slice of a disbursement problem.
type Cluster struct {
	ID         int         `json:"id"`
	Agents     []Agent     `json:"agents"`
	Objectives []Objective `json:"objectives"`
}

// Solvable reports whether the cluster has both agents and objectives.
func (c Cluster) Solvable() bool {
	return len(c.Agents) > 0 && len(c.Objectives) > 0
}
