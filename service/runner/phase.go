package runner

// Phase is a step of a single run.
type Phase int32

const (
	PhaseStart Phase = iota
	PhaseArmDiagnostics
	PhaseResolvePaths
	PhaseDeserialize
	PhaseConfigureSink
	PhaseExecute
	PhaseSuccessExit
	PhaseFailureExit
	PhaseSignalExit
)

var phaseNames = [...]string{
	PhaseStart:          "start",
	PhaseArmDiagnostics: "arm_diagnostics",
	PhaseResolvePaths:   "resolve_paths",
	PhaseDeserialize:    "deserialize",
	PhaseConfigureSink:  "configure_sink",
	PhaseExecute:        "execute",
	PhaseSuccessExit:    "success_exit",
	PhaseFailureExit:    "failure_exit",
	PhaseSignalExit:     "signal_exit",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Terminal reports whether no further phase follows p.
func (p Phase) Terminal() bool {
	return p >= PhaseSuccessExit
}
