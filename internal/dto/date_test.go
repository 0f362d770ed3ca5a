package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDate_UnmarshalJSON(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"date only", `"2024-03-04"`, day, false},
		{"utc instant", `"2024-03-04T18:45:00Z"`, day, false},
		{"offset instant crossing midnight", `"2024-03-05T01:30:00+03:00"`, day, false},
		{"wrong layout", `"04/03/2024"`, time.Time{}, true},
		{"not a string", `20240304`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d BusinessDate
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %s", d.Time)
		})
	}
}

func TestBusinessDate_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(BulkReconciliationRequest{BusinessDateUTC: BusinessDate{Time: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"businessDateUtc":"2024-03-04"}`, string(out))
}
