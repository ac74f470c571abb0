package services

// Counter is satisfied by prometheus.Counter.
type Counter interface {
	Inc()
}

type nopCounter struct{}

func (nopCounter) Inc() {}
