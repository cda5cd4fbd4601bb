package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// DrainTimeoutFactor times the longest protocol timeout is how long an
	// interrupted run waits for running downloads to remove their partial files.
	DrainTimeoutFactor = 3
)
