package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabeledTab_Definition(t *testing.T) {
	text := NewTextTab("company", nil)
	def := text.Definition()
	require.NotNil(t, def.Value)
	assert.Equal(t, "", *def.Value)
	assert.True(t, *def.Locked)
	assert.Nil(t, def.Selected)

	text.ID = "tab-1"
	text.Set(42)
	assert.True(t, text.Dirty())
	def = text.Definition()
	assert.Equal(t, "42", *def.Value)
	assert.Equal(t, "tab-1", def.TabID)

	box := NewCheckboxTab("agree", false)
	assert.False(t, box.Dirty())
	def = box.Definition()
	require.NotNil(t, def.Selected)
	assert.False(t, *def.Selected)
	assert.Nil(t, def.Value)

	box.Set("true")
	assert.True(t, *box.Definition().Selected)
}

func TestGroupTabs(t *testing.T) {
	assert.Nil(t, GroupTabs(nil, GenerationV21))
	assert.Nil(t, GroupTabs([]*LabeledTab{{Label: "no kind"}}, GenerationV21))

	set := GroupTabs([]*LabeledTab{
		NewTextTab("a", "1"),
		NewCheckboxTab("b", true),
		NewTextTab("c", "3"),
	}, GenerationV21)
	require.NotNil(t, set)
	assert.Len(t, set.Get(TabText), 2)
	assert.Len(t, set.Get(TabCheckbox), 1)
}

func TestRecipient_Definition(t *testing.T) {
	r := Recipient{
		ID:       2,
		RoleName: "Witness",
		Name:     "Sam",
		Email:    "sam@example.com",
		Embedded: true,
		Tabs:     []*LabeledTab{NewTextTab("city", "Oslo")},
	}

	def := r.Definition(GenerationV21)
	assert.Equal(t, "2", def.RecipientID)
	assert.Equal(t, "sam@example.com", def.ClientUserID)
	require.NotNil(t, def.Embedded)
	assert.True(t, *def.Embedded)

	remote := Recipient{RoleName: "Viewer", Email: "v@example.com"}.Definition(GenerationV21)
	m := toMap(t, remote)
	assert.Equal(t, "v@example.com", m["clientUserId"])
	assert.NotContains(t, m, "embedded")
	assert.NotContains(t, m, "tabs")
}

func TestMergeRecipients(t *testing.T) {
	merged := MergeRecipients([]Recipient{
		{ID: 2, RoleName: "Witness", Tabs: []*LabeledTab{NewTextTab("city", "Oslo")}},
		{ID: 1, RoleName: "Client", Tabs: []*LabeledTab{NewTextTab("name", "Jane")}},
		{ID: 2, RoleName: "Ignored", Tabs: []*LabeledTab{NewTextTab("city", "Bergen"), NewCheckboxTab("agree", true)}},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, 1, merged[0].ID)
	assert.Equal(t, "Client", merged[0].RoleName)

	witness := merged[1]
	assert.Equal(t, "Witness", witness.RoleName)
	require.Len(t, witness.Tabs, 2)
	assert.Equal(t, "Bergen", witness.Tabs[0].Value)
	assert.Equal(t, TabCheckbox, witness.Tabs[1].Kind)
}

func TestEnvelope_Definition(t *testing.T) {
	env := &Envelope{
		EmailSubject: "Please sign",
		CompositeTemplates: []CompositeTemplate{
			NewCompositeTemplate([]string{"tmpl-1"}, []Recipient{{ID: 1, RoleName: "Client", Email: "c@example.com", Name: "C"}}),
		},
	}

	def, err := env.Definition(GenerationV21)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, def.Status)

	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "sent",
		"emailSubject": "Please sign",
		"compositeTemplates": [{
			"serverTemplates": [{"sequence": "1", "templateId": "tmpl-1"}],
			"inlineTemplates": [{"sequence": "1", "recipients": {"signers": [
				{"recipientId": "1", "email": "c@example.com", "clientUserId": "c@example.com", "name": "C", "roleName": "Client"}
			]}}]
		}]
	}`, string(data))

	env.Status = StatusCreated
	def, err = env.Definition(GenerationV21)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, def.Status)
}

func TestEnvelope_DefinitionRejectsBadSequence(t *testing.T) {
	env := &Envelope{CompositeTemplates: []CompositeTemplate{{
		ServerTemplates: []ServerTemplate{{Sequence: 2, TemplateID: "a"}},
		InlineTemplates: []InlineTemplate{{Sequence: 1}},
	}}}

	_, err := env.Definition(GenerationV21)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "composite_templates[0]")
}
