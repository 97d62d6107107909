package rowmap

// Status is the lifecycle marker of a tracked entity.
type Status uint8

// Tracking statuses. Only Transient and Loaded are assigned by this module;
// the remaining transitions belong to the session layer.
const (
	Transient Status = iota
	Loaded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Transient:
		return "transient"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Fingerprint is the combined hash over the as-loaded column values of an
// entity, in column declaration order.
type Fingerprint uint64

// State holds the tracking state of an entity. Embed it in an entity struct
// to make the entity a Tracker:
//
//	type User struct {
//	    rowmap.State
//	    ID   int64
//	    Name string
//	}
//
// The embedded State is skipped by the metadata registry.
type State struct {
	status      Status
	fingerprint Fingerprint
}

// Tracker is implemented by entities that carry tracking state.
type Tracker interface {
	TrackingState() *State
}

// TrackingState implements Tracker.
func (s *State) TrackingState() *State { return s }

// Status returns the lifecycle marker.
func (s *State) Status() Status { return s.status }

// Fingerprint returns the as-loaded fingerprint. It is zero for transient entities.
func (s *State) Fingerprint() Fingerprint { return s.fingerprint }

// MarkLoaded records a successful load and replaces the fingerprint.
func (s *State) MarkLoaded(fp Fingerprint) {
	s.status = Loaded
	s.fingerprint = fp
}

// StateOf returns the tracking state of v, if v is a Tracker.
func StateOf(v any) (*State, bool) {
	t, ok := v.(Tracker)
	if !ok {
		return nil, false
	}
	return t.TrackingState(), true
}
