package logtrace

// TODO - Enable tracing
func IsTraceEnabled() bool {
	return false
}
