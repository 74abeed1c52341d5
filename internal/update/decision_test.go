package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_AbsentLocal(t *testing.T) {
	// absent local is the zero version: anything released wins
	assert.Equal(t, UpdateAvailable, Decide(Version{}, Version{0, 0, 1}))
	assert.Equal(t, UpdateAvailable, Decide(Version{}, Version{1, 2, 0}))

	// unless the remote is also the zero version
	assert.Equal(t, UpToDate, Decide(Version{}, Version{}))
}

func TestDecide_CompareDriven(t *testing.T) {
	tests := []struct {
		name   string
		local  Version
		remote Version
		want   Decision
	}{
		{"equal", Version{1, 2, 0}, Version{1, 2, 0}, UpToDate},
		{"remote patch ahead", Version{1, 0, 0}, Version{1, 0, 1}, UpdateAvailable},
		{"remote minor ahead", Version{1, 0, 9}, Version{1, 1, 0}, UpdateAvailable},
		{"remote major ahead", Version{1, 99, 99}, Version{2, 0, 0}, UpdateAvailable},
		{"remote behind", Version{2, 0, 0}, Version{1, 9, 9}, UpToDate},
		{"remote patch behind", Version{1, 0, 1}, Version{1, 0, 0}, UpToDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.local, tt.remote))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "up-to-date", UpToDate.String())
	assert.Equal(t, "update-available", UpdateAvailable.String())
}
