package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// TabKind names a tab type. The collection it is sent in is derived from
// the kind, see [TabKind.CollectionName].
type TabKind string

// Tab kinds
const (
	TabApprove          TabKind = "approve"
	TabCheckbox         TabKind = "checkbox"
	TabCompany          TabKind = "company"
	TabDateSigned       TabKind = "date_signed"
	TabDate             TabKind = "date"
	TabDecline          TabKind = "decline"
	TabEmail            TabKind = "email"
	TabEmailAddress     TabKind = "email_address"
	TabEnvelopeID       TabKind = "envelope_id"
	TabFirstName        TabKind = "first_name"
	TabFormula          TabKind = "formula"
	TabFullName         TabKind = "full_name"
	TabInitialHere      TabKind = "initial_here"
	TabLastName         TabKind = "last_name"
	TabList             TabKind = "list"
	TabNote             TabKind = "note"
	TabNumber           TabKind = "number"
	TabRadioGroup       TabKind = "radio_group"
	TabSignHere         TabKind = "sign_here"
	TabSignerAttachment TabKind = "signer_attachment"
	TabSSN              TabKind = "ssn"
	TabText             TabKind = "text"
	TabTitle            TabKind = "title"
	TabZip              TabKind = "zip"
)

// TabKinds lists every known kind in the order collections are emitted.
var TabKinds = []TabKind{
	TabApprove, TabCheckbox, TabCompany, TabDateSigned, TabDate, TabDecline,
	TabEmail, TabEmailAddress, TabEnvelopeID, TabFirstName, TabFormula,
	TabFullName, TabInitialHere, TabLastName, TabList, TabNote, TabNumber,
	TabRadioGroup, TabSignHere, TabSignerAttachment, TabSSN, TabText,
	TabTitle, TabZip,
}

var knownKinds = func() map[TabKind]int {
	m := make(map[TabKind]int, len(TabKinds))
	for i, k := range TabKinds {
		m[k] = i
	}
	return m
}()

// CollectionName returns the wire name of the kind's collection,
// e.g. sign_here becomes signHereTabs.
func (k TabKind) CollectionName() string {
	return strcase.ToLowerCamel(string(k) + "_tabs")
}

// Known reports whether k is one of [TabKinds].
func (k TabKind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// scaled kinds carry scaleValue
func (k TabKind) scaled() bool {
	return k == TabSignHere || k == TabInitialHere
}

// KindFromCollection is the inverse of CollectionName.
func KindFromCollection(name string) (TabKind, bool) {
	if !strings.HasSuffix(name, "Tabs") || name == "Tabs" {
		return "", false
	}
	return TabKind(strcase.ToSnake(strings.TrimSuffix(name, "Tabs"))), true
}

// Generation selects the payload shape of a provider API version.
type Generation int

const (
	// GenerationV2 sends every tab collection, unused ones as null.
	GenerationV2 Generation = iota
	// GenerationV21 omits unused tab collections.
	GenerationV21
)

// GenerationFor maps an API version path segment to its payload generation.
func GenerationFor(apiVersion string) Generation {
	switch strings.TrimSpace(strings.ToLower(apiVersion)) {
	case "", "v2":
		return GenerationV2
	default:
		return GenerationV21
	}
}

func (g Generation) String() string {
	if g == GenerationV21 {
		return "v2.1"
	}
	return "v2"
}

// Tab describes a field placed on a document. Either AnchorString or
// XPosition/YPosition positions it.
type Tab struct {
	AnchorString           string `mapstructure:"anchor_string"`
	AnchorXOffset          string `mapstructure:"anchor_x_offset"`
	AnchorYOffset          string `mapstructure:"anchor_y_offset"`
	IgnoreAnchorIfNotFound bool   `mapstructure:"ignore_anchor_if_not_found"`

	// XPosition and YPosition are sent without an anchor. The provider has
	// been observed to ignore them in some layouts.
	XPosition string `mapstructure:"x_position"`
	YPosition string `mapstructure:"y_position"`

	DocumentID string `mapstructure:"document_id"`
	PageNumber string `mapstructure:"page_number"`

	Label    string
	Name     string
	Value    string
	Width    string
	Height   string
	Required bool
	Optional bool
	Locked   bool
	Selected *bool

	TemplateLocked   *bool   `mapstructure:"template_locked"`
	TemplateRequired *bool   `mapstructure:"template_required"`
	ScaleValue       float64 `mapstructure:"scale_value"`

	Font      string
	FontSize  string `mapstructure:"font_size"`
	FontColor string `mapstructure:"font_color"`
	Bold      bool
	Italic    bool
	Underline bool

	ListItems []ListItem `mapstructure:"list_items"`
	GroupName string     `mapstructure:"group_name"`
	Radios    []Tab

	ValidationPattern string `mapstructure:"validation_pattern"`
	ValidationMessage string `mapstructure:"validation_message"`

	ConditionalParentLabel string `mapstructure:"conditional_parent_label"`
	ConditionalParentValue string `mapstructure:"conditional_parent_value"`
}

// ListItem is one option of a list tab
type ListItem struct {
	Text     string `json:"text,omitempty"`
	Value    string `json:"value,omitempty"`
	Selected *bool  `json:"selected,omitempty"`
}

// TabDefinition is the wire form of a tab.
type TabDefinition struct {
	TabID string `json:"tabId,omitempty"`

	AnchorString             string `json:"anchorString,omitempty"`
	AnchorXOffset            string `json:"anchorXOffset,omitempty"`
	AnchorYOffset            string `json:"anchorYOffset,omitempty"`
	AnchorIgnoreIfNotPresent *bool  `json:"anchorIgnoreIfNotPresent,omitempty"`
	AnchorUnits              string `json:"anchorUnits,omitempty"`

	ConditionalParentLabel string `json:"conditionalParentLabel,omitempty"`
	ConditionalParentValue string `json:"conditionalParentValue,omitempty"`

	DocumentID  string `json:"documentId,omitempty"`
	PageNumber  string `json:"pageNumber,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	XPosition   string `json:"xPosition,omitempty"`
	YPosition   string `json:"yPosition,omitempty"`

	Required         *bool    `json:"required,omitempty"`
	Optional         *bool    `json:"optional,omitempty"`
	Locked           *bool    `json:"locked,omitempty"`
	TemplateLocked   *bool    `json:"templateLocked,omitempty"`
	TemplateRequired *bool    `json:"templateRequired,omitempty"`
	ScaleValue       *float64 `json:"scaleValue,omitempty"`

	Name     string  `json:"name,omitempty"`
	TabLabel string  `json:"tabLabel,omitempty"`
	Width    string  `json:"width,omitempty"`
	Height   string  `json:"height,omitempty"`
	Value    *string `json:"value,omitempty"`
	Selected *bool   `json:"selected,omitempty"`

	Font      string `json:"font,omitempty"`
	FontSize  string `json:"fontSize,omitempty"`
	FontColor string `json:"fontColor,omitempty"`
	Bold      *bool  `json:"bold,omitempty"`
	Italic    *bool  `json:"italic,omitempty"`
	Underline *bool  `json:"underline,omitempty"`

	ListItems []ListItem      `json:"listItems,omitempty"`
	GroupName string          `json:"groupName,omitempty"`
	Radios    []TabDefinition `json:"radios,omitempty"`

	ValidationPattern string `json:"validationPattern,omitempty"`
	ValidationMessage string `json:"validationMessage,omitempty"`
}

// Defaults applied to tabs
const (
	DefaultDocumentID  = "1"
	DefaultPageNumber  = "1"
	DefaultOffset      = "0"
	DefaultTabLabel    = "Signature 1"
	DefaultAnchorUnits = "pixels"
)

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func flag(b bool) *bool {
	if !b {
		return nil
	}
	return boolPtr(true)
}

func optionalBool(b *bool, def bool) *bool {
	if b == nil {
		return boolPtr(def)
	}
	return boolPtr(*b)
}

// BuildTab converts one tab of the given kind for the recipient.
func BuildTab(kind TabKind, tab Tab, recipientID string, opts BuildOptions) TabDefinition {
	def := TabDefinition{
		ConditionalParentLabel: tab.ConditionalParentLabel,
		ConditionalParentValue: tab.ConditionalParentValue,
		DocumentID:             orDefault(tab.DocumentID, DefaultDocumentID),
		PageNumber:             orDefault(tab.PageNumber, DefaultPageNumber),
		RecipientID:            recipientID,
		Required:               boolPtr(tab.Required),
		Optional:               boolPtr(tab.Optional),
		Locked:                 boolPtr(tab.Locked),
		Name:                   tab.Name,
		TabLabel:               orDefault(tab.Label, DefaultTabLabel),
		Width:                  tab.Width,
		Height:                 tab.Height,
		Selected:               tab.Selected,
		Font:                   tab.Font,
		FontSize:               tab.FontSize,
		FontColor:              tab.FontColor,
		Bold:                   flag(tab.Bold),
		Italic:                 flag(tab.Italic),
		Underline:              flag(tab.Underline),
		ListItems:              tab.ListItems,
		GroupName:              tab.GroupName,
		ValidationPattern:      tab.ValidationPattern,
		ValidationMessage:      tab.ValidationMessage,
	}

	if tab.AnchorString != "" {
		def.AnchorString = tab.AnchorString
		def.AnchorXOffset = orDefault(tab.AnchorXOffset, DefaultOffset)
		def.AnchorYOffset = orDefault(tab.AnchorYOffset, DefaultOffset)
		def.AnchorIgnoreIfNotPresent = boolPtr(tab.IgnoreAnchorIfNotFound)
		def.AnchorUnits = DefaultAnchorUnits
	} else {
		def.XPosition = orDefault(tab.XPosition, DefaultOffset)
		def.YPosition = orDefault(tab.YPosition, DefaultOffset)
	}

	if tab.Value != "" {
		def.Value = stringPtr(tab.Value)
	}

	if opts.Template {
		def.TemplateLocked = optionalBool(tab.TemplateLocked, true)
		def.TemplateRequired = optionalBool(tab.TemplateRequired, true)
	}

	if kind.scaled() {
		scale := tab.ScaleValue
		if scale == 0 {
			scale = 1
		}
		def.ScaleValue = &scale
	}

	for _, radio := range tab.Radios {
		def.Radios = append(def.Radios, BuildTab(kind, radio, recipientID, opts))
	}

	return def
}

// BuildTabs converts a tab map into a TabSet for the recipient.
func BuildTabs(tabs map[TabKind][]Tab, recipientID string, opts BuildOptions) (*TabSet, error) {
	set := NewTabSet(opts.Generation)
	for kind, list := range tabs {
		if !kind.Known() {
			return nil, fmt.Errorf("%w: unknown tab kind %q", ErrInvalidInput, kind)
		}
		for _, tab := range list {
			set.Add(kind, BuildTab(kind, tab, recipientID, opts))
		}
	}
	return set, nil
}

// TabSet groups tab definitions into their named collections.
type TabSet struct {
	Generation Generation
	tabs       map[TabKind][]TabDefinition
}

// NewTabSet creates an empty set for the generation
func NewTabSet(gen Generation) *TabSet {
	return &TabSet{Generation: gen, tabs: make(map[TabKind][]TabDefinition)}
}

// Add appends tabs to the kind's collection
func (s *TabSet) Add(kind TabKind, tabs ...TabDefinition) {
	if s.tabs == nil {
		s.tabs = make(map[TabKind][]TabDefinition)
	}
	s.tabs[kind] = append(s.tabs[kind], tabs...)
}

// Get returns the kind's collection
func (s *TabSet) Get(kind TabKind) []TabDefinition {
	if s == nil {
		return nil
	}
	return s.tabs[kind]
}

// Len counts tabs across collections
func (s *TabSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, list := range s.tabs {
		n += len(list)
	}
	return n
}

// Kinds returns the populated kinds, known kinds first in emission order.
func (s *TabSet) Kinds() []TabKind {
	if s == nil {
		return nil
	}
	kinds := make([]TabKind, 0, len(s.tabs))
	for k, list := range s.tabs {
		if len(list) > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool {
		oi, iok := knownKinds[kinds[i]]
		oj, jok := knownKinds[kinds[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return kinds[i] < kinds[j]
		}
	})
	return kinds
}

// MarshalJSON emits collections in a fixed order. GenerationV2 includes
// every known collection, unused ones as null.
func (s TabSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(kind TabKind, list []TabDefinition) error {
		name, err := json.Marshal(kind.CollectionName())
		if err != nil {
			return err
		}
		value := []byte("null")
		if len(list) > 0 {
			if value, err = json.Marshal(list); err != nil {
				return fmt.Errorf("failed to marshal %s: %w", kind.CollectionName(), err)
			}
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	if s.Generation == GenerationV2 {
		for _, kind := range TabKinds {
			if err := write(kind, s.tabs[kind]); err != nil {
				return nil, err
			}
		}
		for _, kind := range s.Kinds() {
			if !kind.Known() {
				if err := write(kind, s.tabs[kind]); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for _, kind := range s.Kinds() {
			if err := write(kind, s.tabs[kind]); err != nil {
				return nil, err
			}
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads collections keyed by collection name. Null and
// non-tab keys are skipped.
func (s *TabSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.tabs = make(map[TabKind][]TabDefinition)
	for name, value := range raw {
		kind, ok := KindFromCollection(name)
		if !ok || string(value) == "null" {
			continue
		}
		var list []TabDefinition
		if err := json.Unmarshal(value, &list); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		s.Add(kind, list...)
	}
	return nil
}
