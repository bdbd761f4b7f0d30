//go:build aws

package cloudwatch

import (
	"fmt"

	"github.com/directoryops/ldapwatch/pkg/sink"
)

func init() {
	sink.Register(sink.KindCloudWatch, buildCloudWatchSink)
}

func buildCloudWatchSink(cfg *sink.Config) (sink.Sink, error) {
	if cfg.CloudWatch == nil {
		return nil, fmt.Errorf("cloudwatch configuration is required for the cloudwatch sink")
	}
	if cfg.CloudWatch.LogGroupName == "" {
		return nil, fmt.Errorf("cloudwatch.log_group_name is required")
	}
	if cfg.CloudWatch.LogStreamName == "" {
		return nil, fmt.Errorf("cloudwatch.log_stream_name is required")
	}

	return &Sink{
		LogGroupName:  cfg.CloudWatch.LogGroupName,
		LogStreamName: cfg.CloudWatch.LogStreamName,
		Region:        cfg.CloudWatch.Region,
	}, nil
}
