package status

// Target is one monitored pipeline, or workflow on a repository branch
type Target struct {
	Position int `json:"position"`
	// ID is the Azure pipeline definition id, or the GitHub workflow file name or id
	ID     string `json:"id"`
	Repo   string `json:"repo,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// SelectPriorityTarget picks the target to navigate to on activation.
//
// Without statuses (nothing fetched yet) it is the first target. Otherwise the
// most urgent status wins and ties keep the earliest configured target, so the
// same set of statuses always lands on the same page.
func SelectPriorityTarget(targets []Target, statuses []Normalized) Target {
	if len(targets) == 0 {
		return Target{}
	}
	if len(statuses) == 0 {
		return targets[0]
	}

	bestIndex := 0
	bestPriority := statuses[0].Priority
	for i := 1; i < len(targets) && i < len(statuses); i++ {
		if statuses[i].Priority < bestPriority {
			bestPriority = statuses[i].Priority
			bestIndex = i
		}
	}

	return targets[bestIndex]
}
