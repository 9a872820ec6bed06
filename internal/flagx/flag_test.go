package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-a", ":8080", "-x", "junk", "-i", "5"}
	got := FilterArgs(args, []string{"-a", "-i"})
	assert.Equal(t, []string{"-a", ":8080", "-i", "5"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=1"}
	got := FilterArgs(args, []string{"--config"})
	assert.Equal(t, []string{"--config=conf.json"}, got)
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-v", "-a", ":9000"}
	got := FilterArgs(args, []string{"-v"})
	assert.Equal(t, []string{"-v"}, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJSONConfigFlag(t *testing.T) {
	assert.Equal(t, "conf.json", JSONConfigFlag([]string{"-c", "conf.json"}))
	assert.Equal(t, "conf.json", JSONConfigFlag([]string{"--config=conf.json"}))
	assert.Equal(t, "", JSONConfigFlag([]string{"-a", ":8080"}))
}
