// Package metrics exports string buffer activity as Prometheus metrics.
//
// An Observer is attached to buffers with buffer.WithObserver. It counts
// operations by outcome and records storage growth:
//
//	reg := prometheus.NewRegistry()
//	obs := metrics.NewObserver(reg)
//	buf, _ := buffer.New(buffer.WithObserver(obs))
//
// Dump writes everything a Gatherer holds in the text exposition format.
package metrics
