//go:build gcp

package main

// Register the Pub/Sub sink. The init() function in the pubsub package
// calls sink.Register(), making the pubsub sink kind available.
import _ "github.com/directoryops/ldapwatch/pkg/sink/pubsub"
