package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"warden/internal/config"
)

// Requirement defines an external binary the host relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// DefaultRequirements lists the binaries needed to run the sidecar described
// by cfg.
func DefaultRequirements(cfg *config.Config) []Requirement {
	runtime := ""
	if cfg != nil {
		runtime = cfg.Sidecar.Runtime
	}
	return []Requirement{
		{
			Name:        "Sidecar runtime",
			Command:     runtime,
			Description: "interpreter used to launch the local API worker",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
