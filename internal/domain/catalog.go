package domain

// Selector kinds, ranked by robustness for automation: an id survives page
// restyling better than a name, which survives better than a class.
const (
	SelectorID    = "id"
	SelectorName  = "name"
	SelectorClass = "class"
)

// ElementDescriptor is one addressable UI element. A class-keyed descriptor
// may stand in for several physical nodes sharing the class; only the first
// is kept.
type ElementDescriptor struct {
	Key           string            `json:"key"`
	Tag           string            `json:"tag"`
	Type          string            `json:"type"`
	SelectorKind  string            `json:"selector_type"`
	SelectorValue string            `json:"selector_value"`
	Text          string            `json:"text"`
	Attributes    map[string]string `json:"attributes"`
	XPath         string            `json:"xpath"`
	CSSSelector   string            `json:"css_selector"`
}

// FormField is one input, select or textarea inside a form.
type FormField struct {
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
}

// FormInfo describes a form and its fields in document order.
type FormInfo struct {
	Key        string            `json:"key"`
	Action     string            `json:"action"`
	Method     string            `json:"method"`
	Fields     []FormField       `json:"fields"`
	Attributes map[string]string `json:"attributes"`
}

// ButtonInfo describes a button element or a button-typed input.
type ButtonInfo struct {
	Key        string            `json:"key"`
	Tag        string            `json:"tag"`
	Type       string            `json:"type"`
	Text       string            `json:"text"`
	OnClick    string            `json:"onclick,omitempty"`
	Class      string            `json:"class,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// InputInfo describes an input, select or textarea anywhere on the page.
type InputInfo struct {
	Key         string            `json:"key"`
	Tag         string            `json:"tag"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Placeholder string            `json:"placeholder"`
	Required    bool              `json:"required"`
	Value       string            `json:"value"`
	Class       string            `json:"class,omitempty"`
	Attributes  map[string]string `json:"attributes"`
}

// LinkInfo describes an anchor element.
type LinkInfo struct {
	Key        string            `json:"key"`
	Href       string            `json:"href"`
	Text       string            `json:"text"`
	Title      string            `json:"title"`
	Target     string            `json:"target"`
	Class      string            `json:"class,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// TextElement is the non-empty text content of a heading, paragraph, span,
// div or label.
type TextElement struct {
	Key   string `json:"key"`
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// ContainerInfo is a top-level container carrying an id or class.
type ContainerInfo struct {
	Tag   string `json:"tag"`
	ID    string `json:"id,omitempty"`
	Class string `json:"class,omitempty"`
}

// PageStructure summarises the page for prompt building.
type PageStructure struct {
	Title          string          `json:"title"`
	HasForms       bool            `json:"has_forms"`
	FormCount      int             `json:"form_count"`
	ButtonCount    int             `json:"button_count"`
	InputCount     int             `json:"input_count"`
	LinkCount      int             `json:"link_count"`
	MainContainers []ContainerInfo `json:"main_containers"`
}

// DomCatalog is the structured inventory of addressable HTML elements
// extracted from the checkout page. Selector keys preserve extraction order
// so selector resolution and prompt building are deterministic.
type DomCatalog struct {
	Selectors    map[string]ElementDescriptor `json:"selectors"`
	SelectorKeys []string                     `json:"selector_keys"`
	Forms        []FormInfo                   `json:"forms"`
	Buttons      []ButtonInfo                 `json:"buttons"`
	Inputs       []InputInfo                  `json:"inputs"`
	Links        []LinkInfo                   `json:"links"`
	TextElements []TextElement                `json:"text_elements"`
	Structure    PageStructure                `json:"structure"`
}

// Empty reports whether extraction produced no addressable elements.
func (c *DomCatalog) Empty() bool {
	return c == nil || (len(c.Selectors) == 0 && len(c.Buttons) == 0 && len(c.Inputs) == 0)
}

// OrderedSelectors returns the descriptors in extraction order.
func (c *DomCatalog) OrderedSelectors() []ElementDescriptor {
	if c == nil {
		return nil
	}
	out := make([]ElementDescriptor, 0, len(c.SelectorKeys))
	for _, key := range c.SelectorKeys {
		if desc, ok := c.Selectors[key]; ok {
			out = append(out, desc)
		}
	}
	return out
}
