// Package prerequisites checks that the host tools a run relies on are
// installed before anything is changed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/imamik/etcdnode/internal/config"
)

// Tool is an executable looked up on PATH.
type Tool struct {
	Name        string
	Required    bool
	Description string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ForConfig returns the tools an apply run with cfg needs.
func ForConfig(cfg *config.Config) []Tool {
	tools := []Tool{
		{
			Name:        "systemctl",
			Required:    true,
			Description: "stops and starts the etcd unit",
		},
		{
			Name:        "etcd",
			Required:    false,
			Description: "the etcd server started by the unit",
		},
	}
	if cfg.Cron.Enabled {
		tools = append(tools, Tool{
			Name:        "etcdctl",
			Required:    true,
			Description: "runs the scheduled defragmentation",
		})
	}
	if cfg.Monitoring.Enabled || cfg.LeaderExporter.Enabled {
		tools = append(tools, Tool{
			Name:        "python3",
			Required:    true,
			Description: "runs the cluster check and the leader exporter",
		})
	}
	return tools
}

// CheckResult is the outcome for one tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults collects the outcome for several tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors reports whether a required tool is missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error naming every missing required tool, or nil.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.Description))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check looks up every tool on PATH.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := lookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}
