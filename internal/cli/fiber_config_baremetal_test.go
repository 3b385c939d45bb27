//go:build !docker

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfigBareMetal(t *testing.T) {
	config := createFiberConfig("Test App", nil)

	assert.True(t, config.TrustProxyConfig.Loopback)
	assert.False(t, config.TrustProxyConfig.Private, "bare metal only trusts a local proxy")
	assert.False(t, createListenConfig().DisableStartupMessage)
}
