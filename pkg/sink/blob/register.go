//go:build azure

package blob

import (
	"fmt"

	"github.com/directoryops/ldapwatch/pkg/sink"
)

func init() {
	sink.Register(sink.KindAzureBlob, buildBlobSink)
}

func buildBlobSink(cfg *sink.Config) (sink.Sink, error) {
	if cfg.AzureBlob == nil {
		return nil, fmt.Errorf("azureblob configuration is required for the azureblob sink")
	}
	if cfg.AzureBlob.AccountURL == "" {
		return nil, fmt.Errorf("azureblob.account_url is required")
	}
	if cfg.AzureBlob.ContainerName == "" {
		return nil, fmt.Errorf("azureblob.container_name is required")
	}

	return &Sink{
		AccountURL:    cfg.AzureBlob.AccountURL,
		ContainerName: cfg.AzureBlob.ContainerName,
		Prefix:        cfg.AzureBlob.Prefix,
	}, nil
}
