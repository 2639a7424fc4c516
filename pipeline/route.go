package pipeline

// Route is the grading branch decision.
type Route int

const (
	// RouteGenerateAnswer proceeds to grounded answer generation.
	RouteGenerateAnswer Route = iota
	// RouteFallback takes the canned-response path.
	RouteFallback
)

func (r Route) String() string {
	switch r {
	case RouteGenerateAnswer:
		return "generate_answer"
	case RouteFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Decide is the single branch point of the pipeline. It is a pure function
// of the proceed flag.
func Decide(proceed bool) Route {
	if proceed {
		return RouteGenerateAnswer
	}
	return RouteFallback
}
