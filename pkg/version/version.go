package version

// set with -ldflags "-X github.com/keboo/deckstatus/pkg/version.Version=..."
var (
	Version = "dev"
	Commit  = ""
)

func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
