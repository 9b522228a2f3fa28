package rgb666

// Status is the state of a fuel station as shown on the status screen.
type Status uint8

// Known station states.
const (
	StatusOpen Status = iota
	StatusClosed
	StatusNoPrices
	StatusUnknown
	numStatus
)

var statusColors = [numStatus]RGB{
	StatusOpen:     {0, 205, 0},
	StatusClosed:   {230, 0, 0},
	StatusNoPrices: {255, 150, 0},
	StatusUnknown:  {255, 150, 0},
}

var statusNames = [numStatus]string{
	StatusOpen:     "OPEN",
	StatusClosed:   "CLOSED",
	StatusNoPrices: "NO PRICES",
	StatusUnknown:  "STATUS UNKNOWN",
}

// Color returns the color the status label is drawn in. Unknown values
// use the color of StatusUnknown.
func (s Status) Color() RGB {
	if s >= numStatus {
		return statusColors[StatusUnknown]
	}
	return statusColors[s]
}

// String returns the label printed for s.
func (s Status) String() string {
	if s >= numStatus {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

// ParseStatus maps a label back to its Status. Unrecognized labels
// resolve to StatusUnknown.
func ParseStatus(label string) Status {
	for i, n := range statusNames {
		if n == label {
			return Status(i)
		}
	}
	return StatusUnknown
}
