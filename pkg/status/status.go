package status

// Kind tells which platform vocabulary a raw status string belongs to
type Kind int

const (
	AzurePipeline Kind = iota
	GithubWorkflow
)

func (k Kind) String() string {
	switch k {
	case AzurePipeline:
		return "azure"
	case GithubWorkflow:
		return "github"
	}
	return "unknown"
}

type State string

const (
	StateFailed    State = "failed"
	StateDegraded  State = "degraded"
	StateCanceled  State = "canceled"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateUnknown   State = "unknown"
)

// RawUnknown is what a failed fetch reports
const RawUnknown = "unknown"

// RawNone is what a fetch reports when the target has never run
const RawNone = "none"

const (
	ColorRed    = "#dc3545"
	ColorOrange = "#fd7e14"
	ColorGray   = "#6c757d"
	ColorBlue   = "#0078d4"
	ColorYellow = "#ffc107"
	ColorGreen  = "#28a745"
)

const (
	SymbolSucceeded = "✓"
	SymbolFailed    = "✗"
	SymbolDegraded  = "⚠"
	SymbolCanceled  = "⊘"
	SymbolRunning   = "⟳"
	SymbolNone      = "-"
	SymbolUnknown   = "?"
)

// Normalized is a raw platform status reduced to something we can rank and draw.
// Lower Priority means more urgent.
type Normalized struct {
	Raw      string `json:"raw"`
	State    State  `json:"state"`
	Priority int    `json:"priority"`
	Color    string `json:"color"`
	Symbol   string `json:"symbol"`
}

// Normalize maps a raw status string of the given platform.
// Azure and GitHub rank on different scales, GitHub has no degraded tier.
func Normalize(raw string, kind Kind) Normalized {
	var n Normalized
	switch kind {
	case AzurePipeline:
		n = normalizeAzure(raw)
	case GithubWorkflow:
		n = normalizeGithub(raw)
	default:
		n = Normalized{State: StateUnknown, Priority: 6, Color: ColorGray}
	}
	n.Raw = raw
	n.Symbol = symbol(raw)
	return n
}

func normalizeAzure(raw string) Normalized {
	switch raw {
	case "failed":
		return Normalized{State: StateFailed, Priority: 1, Color: ColorRed}
	case "partiallySucceeded":
		return Normalized{State: StateDegraded, Priority: 2, Color: ColorOrange}
	case "canceled":
		return Normalized{State: StateCanceled, Priority: 3, Color: ColorGray}
	case "inProgress", "notStarted":
		return Normalized{State: StateRunning, Priority: 4, Color: ColorBlue}
	case "succeeded":
		return Normalized{State: StateSucceeded, Priority: 5, Color: ColorGreen}
	default:
		return Normalized{State: StateUnknown, Priority: 6, Color: ColorGray}
	}
}

func normalizeGithub(raw string) Normalized {
	switch raw {
	case "failure":
		return Normalized{State: StateFailed, Priority: 1, Color: ColorRed}
	case "cancelled", "skipped", RawNone, RawUnknown:
		return Normalized{State: StateCanceled, Priority: 2, Color: ColorGray}
	case "in_progress", "queued", "waiting":
		return Normalized{State: StateRunning, Priority: 3, Color: ColorYellow}
	case "success":
		return Normalized{State: StateSucceeded, Priority: 4, Color: ColorGreen}
	default:
		return Normalized{State: StateUnknown, Priority: 5, Color: ColorGray}
	}
}

func symbol(raw string) string {
	switch raw {
	case "succeeded", "success":
		return SymbolSucceeded
	case "failed", "failure":
		return SymbolFailed
	case "partiallySucceeded":
		return SymbolDegraded
	case "canceled", "cancelled", "skipped":
		return SymbolCanceled
	case "inProgress", "notStarted", "in_progress", "queued", "waiting":
		return SymbolRunning
	case RawNone:
		return SymbolNone
	default:
		return SymbolUnknown
	}
}

// NormalizeAll keeps the positional pairing with the raw slice
func NormalizeAll(raw []string, kind Kind) []Normalized {
	statuses := make([]Normalized, len(raw))
	for i, r := range raw {
		statuses[i] = Normalize(r, kind)
	}
	return statuses
}
