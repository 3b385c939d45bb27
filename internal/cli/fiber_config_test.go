package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfig(t *testing.T) {
	appName := "Test App"
	config := createFiberConfig(appName, nil)

	// AppName should always be set correctly
	assert.Equal(t, appName, config.AppName, "AppName should match input")
	assert.Equal(t, "layouts/main", config.ViewsLayout)
	assert.NotNil(t, config.ErrorHandler)
	assert.Equal(t, "X-Forwarded-For", config.ProxyHeader)
}

func TestCreateFiberConfigAppNameFormat(t *testing.T) {
	tests := []struct {
		name     string
		appName  string
		expected string
	}{
		{
			name:     "simple name",
			appName:  "PosturAI",
			expected: "PosturAI",
		},
		{
			name:     "name with version",
			appName:  "PosturAI v1.0.0",
			expected: "PosturAI v1.0.0",
		},
		{
			name:     "empty name",
			appName:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createFiberConfig(tt.appName, nil)
			assert.Equal(t, tt.expected, config.AppName)
		})
	}
}
