package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"toolbox/internal/config"
)

// Requirement defines an external binary a conversion family relies on.
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
	Path        string
	Detail      string
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
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}

// Requirements lists the external tools configured in cfg. None is required
// to start the daemon; a missing tool only breaks the families that use it.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Transcodes audio and video targets", Optional: true},
		{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Inspects media streams before transcoding", Optional: true},
		{Name: "LibreOffice", Command: cfg.Tools.Soffice, Description: "Converts PDF to DOCX", Optional: true},
	}
}

// MissingRequired reports whether any non-optional requirement is unavailable.
func MissingRequired(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return true
		}
	}
	return false
}
