package cmd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"sfucore/cmd"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    cmd.Config
		wantErr bool
	}{
		{
			name: "given valid args when parsed then return config",
			args: []string{"-port=8080", "-bind=127.0.0.1", "-metrics-port=9999"},
			want: cmd.Config{HTTPPort: 8080, BindAddr: "127.0.0.1", MetricsPort: 9999, RTCMinPort: cmd.DefaultRTCMinPort, RTCMaxPort: cmd.DefaultRTCMaxPort},
		},
		{
			name: "given no args when parsed then return default config",
			args: []string{},
			want: cmd.Config{
				HTTPPort:    cmd.DefaultHTTPPort,
				BindAddr:    cmd.DefaultBindAddr,
				RTCMinPort:  cmd.DefaultRTCMinPort,
				RTCMaxPort:  cmd.DefaultRTCMaxPort,
				MetricsPort: cmd.DefaultMetricsPort,
			},
		},
		{
			name:    "given extra args when parsed then return error",
			args:    []string{"-port=8080", "extra"},
			wantErr: true,
		},
		{
			name:    "given invalid flag format when parsed then return error",
			args:    []string{"-extra"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			got, err := cmd.Parse(&output, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupConfig(t *testing.T) {
	tests := []struct {
		name                string
		args                []string
		expectParseError    bool
		expectValidateError bool
	}{
		{
			name: "given valid args when setup config then return valid config",
			args: []string{"-port=8080", "-metrics-port=9090"},
		},
		{
			name:                "given invalid http port when setup config then return error",
			args:                []string{"-port=70000"},
			expectValidateError: true,
		},
		{
			name:                "given inverted rtc port range when setup config then return error",
			args:                []string{"-rtc-min-port=50000", "-rtc-max-port=40000"},
			expectValidateError: true,
		},
		{
			name:             "given invalid flag format when setup config then return error",
			args:             []string{"-extra"},
			expectParseError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			_, err := cmd.SetupConfig(buf, tt.args)

			if tt.expectParseError || tt.expectValidateError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
