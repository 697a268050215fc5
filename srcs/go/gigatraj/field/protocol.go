package field

// Message tags of the rendezvous between the tracers of a sub-group and its
// data server. Both sides use the same values.
const (
	TagRequest = iota + 1
	TagStatus
	TagQuantity
	TagTime
	TagCalTime
	TagFillValue
	TagRandomSeed
	TagPositions
	TagValues
)

// Request codes, sent with TagRequest as [code, count].
const (
	ReqFetch = iota + 1
	ReqDone
	ReqFillValue
	ReqCalTime
	ReqSeed
)

// Status codes, sent with TagStatus after a fetch.
const (
	StatusOK = iota
	StatusFailed
	StatusUnknownRequest
)

func requestName(code int32) string {
	switch code {
	case ReqFetch:
		return "fetch"
	case ReqDone:
		return "done"
	case ReqFillValue:
		return "fill-value"
	case ReqCalTime:
		return "calendar-time"
	case ReqSeed:
		return "seed"
	default:
		return "unknown"
	}
}
