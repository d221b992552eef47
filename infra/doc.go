// Package infra contains technical adapters such as the MQTT telemetry
// publisher, metrics exporters and the run-history store. These packages
// should depend only on the interfaces defined in the core packages.
package infra
