// Package infra groups the adapters bound to third-party libraries: storage
// drivers, the MQTT notifier, metrics sinks, Sentry and zerolog. They
// implement the interfaces declared under core and never import each other.
package infra
