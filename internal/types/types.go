package types

type Report struct {
	Files []FileReport `json:"files"`
}

type FileReport struct {
	Input       string  `json:"input"`
	Output      string  `json:"output,omitempty"`
	DurationSec float64 `json:"duration_sec"`

	BlackWhite ModeReport `json:"blackwhite"`
	Static     ModeReport `json:"static"`

	// BoundarySec is set when a trim point was selected.
	BoundarySec *int   `json:"boundary_sec,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Trimmed     bool   `json:"trimmed"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ModeReport struct {
	Found    bool `json:"found"`
	StartSec int  `json:"start_sec,omitempty"`
	Probes   int  `json:"probes"`
}
