package update

// Decision is the outcome of comparing the local marker against the
// remote one.
type Decision int

const (
	UpToDate Decision = iota
	UpdateAvailable
)

func (d Decision) String() string {
	switch d {
	case UpToDate:
		return "up-to-date"
	case UpdateAvailable:
		return "update-available"
	default:
		return "unknown"
	}
}

// Decide compares versions only; no I/O. An absent (or self-healed
// malformed) local marker is passed as the zero Version, so any
// released remote triggers an update. A remote less than or equal to
// local is up to date.
func Decide(local, remote Version) Decision {
	if Compare(remote, local) > 0 {
		return UpdateAvailable
	}
	return UpToDate
}
