package navmesh

// Status is the result bitfield returned by every query-engine operation.
// High bits are mutually exclusive; low bits are a disjunction of detail
// flags that can accompany SUCCESS or FAILURE.
type Status uint32

const (
	Failure    Status = 1 << 31
	Success    Status = 1 << 30
	InProgress Status = 1 << 29

	statusDetailMask = 0x0ffffff

	WrongMagic      Status = 1 << 0
	WrongVersion    Status = 1 << 1
	OutOfMemory     Status = 1 << 2
	InvalidParam    Status = 1 << 3
	BufferTooSmall  Status = 1 << 4
	OutOfNodes      Status = 1 << 5
	PartialResult   Status = 1 << 6
	AlreadyOccupied Status = 1 << 7
)

func (s Status) Succeeded() bool   { return s&Success != 0 }
func (s Status) Failed() bool      { return s&Failure != 0 }
func (s Status) InProgress() bool  { return s&InProgress != 0 }
func (s Status) Detail(f Status) bool { return s&f != 0 }
