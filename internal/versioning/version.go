// Package versioning exposes build identity stamped at link time. The values
// show up in startup logs and the health endpoint so a running instance can be
// matched to a build.
package versioning

// Stamped via -ldflags, e.g.
//
//	go build -ldflags "-X github.com/pixlverify/server/internal/versioning.Version=v1.2.0 \
//	  -X github.com/pixlverify/server/internal/versioning.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = ""
)

// Info is the build identity in a form handlers can serialize.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Get returns the stamped build identity.
func Get() Info {
	return Info{Version: Version, Commit: Commit}
}

// String renders the identity as "version" or "version (commit)".
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	return i.Version + " (" + i.Commit + ")"
}
