package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Signer(t *testing.T) {
	input := map[string]any{
		"email":         "jane@example.com",
		"name":          "Jane",
		"role_name":     "Client",
		"routing_order": "2",
		"embedded":      true,
		"tabs": map[string]any{
			"sign_here": []any{
				map[string]any{"anchor_string": "sign here", "anchor_x_offset": 120},
			},
		},
	}

	var s Signer
	require.NoError(t, Decode(input, &s))
	assert.Equal(t, "Client", s.RoleName)
	assert.Equal(t, 2, s.RoutingOrder)
	assert.True(t, s.Embedded)
	require.Len(t, s.Tabs[TabSignHere], 1)
	assert.Equal(t, "sign here", s.Tabs[TabSignHere][0].AnchorString)
	assert.Equal(t, "120", s.Tabs[TabSignHere][0].AnchorXOffset)
}

func TestDecode_UnknownKey(t *testing.T) {
	var cc CarbonCopy
	err := Decode(map[string]any{"email": "a@example.com", "nickname": "A"}, &cc)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "nickname")
}
