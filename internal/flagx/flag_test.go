package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "http://localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-a", "http://localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c", "--config"},
			want:    []string{},
		},
		{
			name:    "flag without value at end is kept",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "dash-prefixed token is not a value",
			args:    []string{"-c", "-t", "5"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "multiple allowed flags keep their order",
			args:    []string{"-a", "http://shop.local", "-c", "conf.yaml", "--other", "x"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-a", "http://shop.local", "-c", "conf.yaml"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-c", "a.json"}))
	assert.Equal(t, "b.yaml", ConfigFileFlag([]string{"-a", "http://x", "-config", "b.yaml"}))
	assert.Equal(t, "c.yml", ConfigFileFlag([]string{"-config=c.yml"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", "http://x"}))
	assert.Equal(t, "", ConfigFileFlag(nil))
}
