package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/tip/errors"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// EngineVersion is the tooltip behaviour version. Scenario files state the
// engine versions they were written against as a semver constraint.
const EngineVersion = "1.2.0"

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	Engine     string `json:"engine"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		Engine:     EngineVersion,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Version != "dev" {
		return fmt.Sprintf("tip %s (engine %s, commit %s, built %s)", i.Version, i.Engine, i.CommitHash, i.BuildTime)
	}
	return fmt.Sprintf("tip dev (engine %s, commit %s, built %s)", i.Engine, i.CommitHash, i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// CheckEngine reports whether EngineVersion satisfies constraint. An empty
// constraint accepts any engine.
func CheckEngine(constraint string) error {
	if constraint == "" {
		return nil
	}
	engine, err := semver.NewVersion(EngineVersion)
	if err != nil {
		return errors.Wrapf(err, "invalid engine version %s", EngineVersion)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid engine constraint %q", constraint), errors.ErrConfiguration)
	}
	if ok, reasons := c.Validate(engine); !ok {
		err := errors.NewConfigurationError("engine %s does not satisfy %q", EngineVersion, constraint)
		for _, r := range reasons {
			err = errors.WithHint(err, r.Error())
		}
		return err
	}
	return nil
}
