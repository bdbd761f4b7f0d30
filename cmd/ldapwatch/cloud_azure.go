//go:build azure

package main

// Register the Azure sinks. The init() functions in the eventhub and
// blob packages call sink.Register(), making the eventhub and azureblob
// sink kinds available.
import (
	_ "github.com/directoryops/ldapwatch/pkg/sink/blob"
	_ "github.com/directoryops/ldapwatch/pkg/sink/eventhub"
)
