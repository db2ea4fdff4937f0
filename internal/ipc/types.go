package ipc

// StartRequest asks the host to launch the local API sidecar.
type StartRequest struct{}

// StartResponse reports the outcome of a sidecar start request.
type StartResponse struct {
	Started bool
	Message string
}

// StopRequest asks the host to tear down the local API sidecar.
type StopRequest struct{}

// StopResponse reports the outcome of a sidecar stop request.
type StopResponse struct {
	Stopped bool
}

// StatusRequest asks for current host and sidecar state.
type StatusRequest struct{}

// SidecarStatus is the wire form of the supervisor's view of the worker.
type SidecarStatus struct {
	Running      bool
	PID          int
	Entrypoint   string
	ResourceRoot string
	Mode         string
	Port         int
}

// DependencyStatus describes availability of an external binary.
type DependencyStatus struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
	Severity    string
}

// StatusLine is a labeled severity row for status rendering.
type StatusLine struct {
	Label    string
	Severity string
	Detail   string
}

// DependencySummary aggregates dependency readiness.
type DependencySummary struct {
	Total           int
	Available       int
	MissingRequired int
	MissingOptional int
	Severity        string
	Detail          string
}

// StatusResponse reports current host state. SystemChecks and
// DependencySummary are derived client-side before rendering.
type StatusResponse struct {
	Running           bool
	PID               int
	LockPath          string
	LogPath           string
	Sidecar           SidecarStatus
	Dependencies      []DependencyStatus
	SystemChecks      []StatusLine
	DependencySummary DependencySummary
}

// LogTailRequest asks for host log lines starting at Offset.
type LogTailRequest struct {
	Offset     int64
	Limit      int
	Follow     bool
	WaitMillis int64
}

// LogTailResponse carries host log lines and the next read offset.
type LogTailResponse struct {
	Lines  []string
	Offset int64
}
