//go:build aws

package main

// Register the CloudWatch Logs sink. The init() function in the
// cloudwatch package calls sink.Register(), making the cloudwatch sink
// kind available.
import _ "github.com/directoryops/ldapwatch/pkg/sink/cloudwatch"
