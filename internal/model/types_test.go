package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContainerInfo_IsRunning checks the state comparison used by status
// output.
func TestContainerInfo_IsRunning(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"running", true},
		{"Running", true},
		{"exited", false},
		{"created", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerInfo{State: tt.state}.IsRunning())
		})
	}
}

// TestContainerInfo_JSON pins the field names of `status --json` output.
func TestContainerInfo_JSON(t *testing.T) {
	data, err := json.Marshal(ContainerInfo{
		ContainerID:   "abc",
		ContainerName: "demo-web-1",
		State:         "running",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"containerId":"abc","containerName":"demo-web-1","state":"running"}`, string(data))
}

// TestExitCodes guards the documented exit code values.
func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, int(ExitSuccess))
	assert.Equal(t, 1, int(ExitGeneralError))
	assert.Equal(t, 2, int(ExitDocumentNotFound))
	assert.Equal(t, 3, int(ExitDockerNotRunning))
	assert.Equal(t, 4, int(ExitInvalidDocument))
	assert.Equal(t, 5, int(ExitConfigurationError))
	assert.Equal(t, 6, int(ExitExecutionFailed))
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitDockerNotRunning, "Docker daemon is not running")
		assert.Equal(t, ExitDockerNotRunning, err.Code)
		assert.Equal(t, "Docker daemon is not running", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("connection refused")
		err := WrapCLIError(ExitDockerNotRunning, "Docker daemon is not running", inner)
		assert.Equal(t, ExitDockerNotRunning, err.Code)
		assert.Equal(t, "Docker daemon is not running: connection refused", err.Error())
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("errors.Is chain", func(t *testing.T) {
		inner := errors.New("connection refused")
		err := WrapCLIError(ExitDockerNotRunning, "Docker daemon is not running", inner)
		assert.True(t, errors.Is(err, inner))
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", Configurationf("no handler exists for command %q", "deploy"))
		var cliErr *CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, ExitConfigurationError, cliErr.Code)
		assert.Equal(t, `no handler exists for command "deploy"`, cliErr.Message)
	})
}
