package payload

import (
	"fmt"
	"sort"
	"strconv"
)

// LabeledTab is a tab addressed by label, used to prefill server templates
// and to update tabs of a sent envelope.
type LabeledTab struct {
	Kind  TabKind
	ID    string
	Label string
	Value any

	dirty bool
}

// NewTextTab creates a text tab
func NewTextTab(label string, value any) *LabeledTab {
	return &LabeledTab{Kind: TabText, Label: label, Value: value}
}

// NewCheckboxTab creates a checkbox tab
func NewCheckboxTab(label string, selected bool) *LabeledTab {
	return &LabeledTab{Kind: TabCheckbox, Label: label, Value: selected}
}

// Set changes the value and marks the tab dirty.
func (t *LabeledTab) Set(value any) {
	t.Value = value
	t.dirty = true
}

// Dirty reports whether Set was called
func (t *LabeledTab) Dirty() bool { return t.dirty }

// Definition renders the tab locked. Checkboxes send selected, every
// other kind sends value, "" when unset.
func (t *LabeledTab) Definition() TabDefinition {
	def := TabDefinition{
		TabID:    t.ID,
		TabLabel: t.Label,
		Locked:   boolPtr(true),
	}
	if t.Kind == TabCheckbox {
		def.Selected = boolPtr(truthy(t.Value))
		return def
	}
	value := ""
	if t.Value != nil {
		value = fmt.Sprint(t.Value)
	}
	def.Value = &value
	return def
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(b)
		return ok
	case nil:
		return false
	default:
		return true
	}
}

// GroupTabs groups tabs into collections by kind. Tabs without a kind are
// skipped; nil is returned when nothing remains.
func GroupTabs(tabs []*LabeledTab, gen Generation) *TabSet {
	set := NewTabSet(gen)
	for _, t := range tabs {
		if t == nil || t.Kind == "" {
			continue
		}
		set.Add(t.Kind, t.Definition())
	}
	if set.Len() == 0 {
		return nil
	}
	return set
}

// Recipient is a template role filled inside a composite template.
type Recipient struct {
	ID       int
	RoleName string
	Name     string
	Email    string
	Embedded bool
	Tabs     []*LabeledTab
}

// Definition renders the recipient as an inline signer.
func (r Recipient) Definition(gen Generation) SignerDefinition {
	def := SignerDefinition{
		RoleName:     r.RoleName,
		Email:        r.Email,
		ClientUserID: r.Email,
		Name:         r.Name,
		Tabs:         GroupTabs(r.Tabs, gen),
	}
	if r.ID > 0 {
		def.RecipientID = strconv.Itoa(r.ID)
	}
	if r.Embedded {
		def.Embedded = boolPtr(true)
	}
	return def
}

// MergeRecipients combines recipients sharing an id, sorted by id. The
// first occurrence supplies the role and contact details; tabs are merged
// with later labels replacing earlier ones.
func MergeRecipients(recipients []Recipient) []Recipient {
	byID := make(map[int]*Recipient)
	var ids []int

	for _, r := range recipients {
		merged, ok := byID[r.ID]
		if !ok {
			cp := r
			cp.Tabs = nil
			merged = &cp
			byID[r.ID] = merged
			ids = append(ids, r.ID)
		}
		for _, tab := range r.Tabs {
			merged.Tabs = mergeTab(merged.Tabs, tab)
		}
	}

	sort.Ints(ids)
	out := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out
}

func mergeTab(tabs []*LabeledTab, tab *LabeledTab) []*LabeledTab {
	for i, existing := range tabs {
		if existing.Label == tab.Label && existing.Kind == tab.Kind {
			tabs[i] = tab
			return tabs
		}
	}
	return append(tabs, tab)
}

// ServerTemplate references a stored template
type ServerTemplate struct {
	Sequence   int
	TemplateID string
}

// ServerTemplatesFromIDs assigns sequences 1..n in order.
func ServerTemplatesFromIDs(ids []string) []ServerTemplate {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ServerTemplate, 0, len(ids))
	for i, id := range ids {
		out = append(out, ServerTemplate{Sequence: i + 1, TemplateID: id})
	}
	return out
}

// InlineTemplate carries recipients at a sequence
type InlineTemplate struct {
	Sequence   int
	Recipients []Recipient
}

// CompositeTemplate combines server templates with an inline template.
type CompositeTemplate struct {
	ServerTemplates []ServerTemplate
	InlineTemplates []InlineTemplate
}

// NewCompositeTemplate references the server templates in order and, when
// recipients are given, adds an inline template at sequence 1.
func NewCompositeTemplate(serverTemplateIDs []string, recipients []Recipient) CompositeTemplate {
	c := CompositeTemplate{ServerTemplates: ServerTemplatesFromIDs(serverTemplateIDs)}
	if len(recipients) > 0 {
		c.InlineTemplates = []InlineTemplate{{Sequence: 1, Recipients: recipients}}
	}
	return c
}

func sequence(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Definition renders the composite template
func (c CompositeTemplate) Definition(gen Generation) CompositeTemplateDefinition {
	var def CompositeTemplateDefinition
	for _, st := range c.ServerTemplates {
		def.ServerTemplates = append(def.ServerTemplates, ServerTemplateDefinition{
			Sequence:   sequence(st.Sequence),
			TemplateID: st.TemplateID,
		})
	}
	for _, it := range c.InlineTemplates {
		inline := InlineTemplateDefinition{Sequence: sequence(it.Sequence)}
		if len(it.Recipients) > 0 {
			signers := make([]SignerDefinition, 0, len(it.Recipients))
			for _, r := range it.Recipients {
				signers = append(signers, r.Definition(gen))
			}
			inline.Recipients = &Recipients{Signers: signers}
		}
		def.InlineTemplates = append(def.InlineTemplates, inline)
	}
	return def
}

// Envelope is an envelope assembled from composite templates. ID is set
// once the envelope has been created.
type Envelope struct {
	ID                 string
	Status             string
	EmailSubject       string
	EmailBody          string
	CompositeTemplates []CompositeTemplate
}

// Definition renders the envelope. Status defaults to sent.
func (e *Envelope) Definition(gen Generation) (*EnvelopeDefinition, error) {
	def := &EnvelopeDefinition{
		Status:       e.Status,
		EmailSubject: e.EmailSubject,
		EmailBlurb:   e.EmailBody,
	}
	if def.Status == "" {
		def.Status = StatusSent
	}
	for i, c := range e.CompositeTemplates {
		ct := c.Definition(gen)
		if err := ct.Validate(); err != nil {
			return nil, inputError(fmt.Sprintf("composite_templates[%d]", i), err)
		}
		def.CompositeTemplates = append(def.CompositeTemplates, ct)
	}
	return def, nil
}
