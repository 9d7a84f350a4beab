package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestCollectionName(t *testing.T) {
	tests := map[TabKind]string{
		TabSignHere:         "signHereTabs",
		TabInitialHere:      "initialHereTabs",
		TabDateSigned:       "dateSignedTabs",
		TabEnvelopeID:       "envelopeIdTabs",
		TabSSN:              "ssnTabs",
		TabText:             "textTabs",
		TabCheckbox:         "checkboxTabs",
		TabRadioGroup:       "radioGroupTabs",
		TabSignerAttachment: "signerAttachmentTabs",
	}

	for kind, want := range tests {
		assert.Equal(t, want, kind.CollectionName(), string(kind))

		back, ok := KindFromCollection(want)
		require.True(t, ok)
		assert.Equal(t, kind, back)
	}

	_, ok := KindFromCollection("recipientId")
	assert.False(t, ok)
}

func TestGenerationFor(t *testing.T) {
	assert.Equal(t, GenerationV2, GenerationFor("v2"))
	assert.Equal(t, GenerationV2, GenerationFor(""))
	assert.Equal(t, GenerationV21, GenerationFor("v2.1"))
	assert.Equal(t, GenerationV21, GenerationFor("V2.1"))
}

func TestBuildTab_Anchor(t *testing.T) {
	def := BuildTab(TabSignHere, Tab{AnchorString: "sign here", AnchorXOffset: "125"}, "1", BuildOptions{})
	m := toMap(t, def)

	assert.Equal(t, "sign here", m["anchorString"])
	assert.Equal(t, "125", m["anchorXOffset"])
	assert.Equal(t, "0", m["anchorYOffset"])
	assert.Equal(t, "pixels", m["anchorUnits"])
	assert.Equal(t, false, m["anchorIgnoreIfNotPresent"])
	assert.NotContains(t, m, "xPosition")
	assert.NotContains(t, m, "yPosition")

	assert.Equal(t, "1", m["documentId"])
	assert.Equal(t, "1", m["pageNumber"])
	assert.Equal(t, "1", m["recipientId"])
	assert.Equal(t, "Signature 1", m["tabLabel"])
	assert.Equal(t, float64(1), m["scaleValue"])
	assert.Equal(t, false, m["required"])
	assert.Equal(t, false, m["optional"])
	assert.Equal(t, false, m["locked"])
	assert.NotContains(t, m, "templateLocked")
}

func TestBuildTab_AnchorUnitsAlwaysPixels(t *testing.T) {
	inputs := []Tab{
		{AnchorString: "a"},
		{AnchorString: "b", AnchorXOffset: "10", AnchorYOffset: "-5", IgnoreAnchorIfNotFound: true},
		{AnchorString: "c", XPosition: "100", YPosition: "200"},
	}

	for _, in := range inputs {
		def := BuildTab(TabText, in, "2", BuildOptions{})
		assert.Equal(t, "pixels", def.AnchorUnits)
		assert.NotEmpty(t, def.AnchorXOffset)
		assert.NotEmpty(t, def.AnchorYOffset)
		assert.Empty(t, def.XPosition)
		assert.Empty(t, def.YPosition)
	}
}

func TestBuildTab_Position(t *testing.T) {
	def := BuildTab(TabText, Tab{XPosition: "100", DocumentID: "2", PageNumber: "3", Label: "company", Value: "ACME"}, "4", BuildOptions{})
	m := toMap(t, def)

	assert.Equal(t, "100", m["xPosition"])
	assert.Equal(t, "0", m["yPosition"])
	assert.Equal(t, "2", m["documentId"])
	assert.Equal(t, "3", m["pageNumber"])
	assert.Equal(t, "company", m["tabLabel"])
	assert.Equal(t, "ACME", m["value"])
	assert.NotContains(t, m, "anchorString")
	assert.NotContains(t, m, "anchorUnits")
	assert.NotContains(t, m, "scaleValue", "only sign and initial tabs scale")
}

func TestBuildTab_TemplateMode(t *testing.T) {
	locked := false
	def := BuildTab(TabText, Tab{TemplateLocked: &locked}, "1", BuildOptions{Template: true})

	require.NotNil(t, def.TemplateLocked)
	require.NotNil(t, def.TemplateRequired)
	assert.False(t, *def.TemplateLocked)
	assert.True(t, *def.TemplateRequired)
}

func TestBuildTab_ListAndRadios(t *testing.T) {
	yes := true
	list := BuildTab(TabList, Tab{
		AnchorString: "another test",
		Width:        "180",
		ListItems: []ListItem{
			{Text: "Option 1", Value: "option_1"},
			{Text: "Option 2", Value: "option_2", Selected: &yes},
		},
	}, "1", BuildOptions{})
	m := toMap(t, list)
	items := m["listItems"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, true, items[1].(map[string]any)["selected"])
	assert.Equal(t, "180", m["width"])

	radio := BuildTab(TabRadioGroup, Tab{
		GroupName: "plan",
		Radios:    []Tab{{Value: "basic", XPosition: "10"}, {Value: "pro", XPosition: "60"}},
	}, "1", BuildOptions{})
	assert.Equal(t, "plan", radio.GroupName)
	require.Len(t, radio.Radios, 2)
	assert.Equal(t, "60", radio.Radios[1].XPosition)
	assert.Equal(t, "pro", *radio.Radios[1].Value)
}

func TestTabSet_GenerationV2NullsUnused(t *testing.T) {
	set := NewTabSet(GenerationV2)
	set.Add(TabSignHere, TabDefinition{TabLabel: "sig"})

	m := toMap(t, set)
	assert.Len(t, m, len(TabKinds))
	for _, kind := range TabKinds {
		assert.Contains(t, m, kind.CollectionName())
	}
	assert.Nil(t, m["textTabs"])
	assert.Len(t, m["signHereTabs"], 1)
}

func TestTabSet_GenerationV21OmitsUnused(t *testing.T) {
	set := NewTabSet(GenerationV21)
	set.Add(TabText, TabDefinition{TabLabel: "a"})
	set.Add(TabCheckbox, TabDefinition{TabLabel: "b"})

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkboxTabs":[{"tabLabel":"b"}],"textTabs":[{"tabLabel":"a"}]}`, string(data))
	assert.Equal(t, `{"checkboxTabs":[{"tabLabel":"b"}],"textTabs":[{"tabLabel":"a"}]}`, string(data), "emission order is fixed")
}

func TestTabSet_Unmarshal(t *testing.T) {
	var set TabSet
	err := json.Unmarshal([]byte(`{
		"textTabs": [{"tabId": "t1", "tabLabel": "name"}],
		"checkboxTabs": [{"tabId": "c1", "tabLabel": "agree", "selected": true}],
		"signHereTabs": null
	}`), &set)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []TabKind{TabCheckbox, TabText}, set.Kinds())
	assert.Equal(t, "t1", set.Get(TabText)[0].TabID)
	assert.True(t, *set.Get(TabCheckbox)[0].Selected)
}

func TestBuildTabs_UnknownKind(t *testing.T) {
	_, err := BuildTabs(map[TabKind][]Tab{"autograph": {{}}}, "1", BuildOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
