package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// NumberFormat is a display pattern such as "(###) ###-####". Each '#' is one national digit.
type NumberFormat string

// Digits returns how many digit placeholders the format has.
func (f NumberFormat) Digits() int {
	return strings.Count(string(f), "#")
}

// Apply renders a ten digit national number through the format.
func (f NumberFormat) Apply(national string) string {
	var b strings.Builder
	i := 0
	for _, r := range string(f) {
		if r == '#' && i < len(national) {
			b.WriteByte(national[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Operator compares a visit attribute with a rule value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
)

func (o Operator) valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpExists, OpNotExists:
		return true
	}
	return false
}

func (o Operator) needsValue() bool {
	return o != OpExists && o != OpNotExists
}

// apply evaluates the operator. present says whether the attribute exists on the visit at all.
func (o Operator) apply(actual string, present bool, want string) bool {
	a, w := strings.ToLower(actual), strings.ToLower(want)
	switch o {
	case OpExists:
		return present
	case OpNotExists:
		return !present
	case OpEquals:
		return present && a == w
	case OpNotEquals:
		return !present || a != w
	case OpContains:
		return present && strings.Contains(a, w)
	case OpNotContains:
		return !present || !strings.Contains(a, w)
	case OpStartsWith:
		return present && strings.HasPrefix(a, w)
	case OpEndsWith:
		return present && strings.HasSuffix(a, w)
	}
	return false
}

// Visit is what is known about a web visitor when a number is chosen for them.
type Visit struct {
	LandingURL string
	Referrer   string
	DeviceType string
	Browser    string
}

func (v Visit) landing() *url.URL {
	u, err := url.Parse(v.LandingURL)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// ConditionType discriminates the Condition variants in their stored form.
type ConditionType string

const (
	CondAll            ConditionType = "all"
	CondLandingPath    ConditionType = "landing_path"
	CondLandingParam   ConditionType = "landing_param"
	CondReferrer       ConditionType = "referrer"
	CondReferrerDomain ConditionType = "referrer_domain"
	CondUTM            ConditionType = "utm"
)

// Condition is one test against a visit. The set of variants is closed.
type Condition interface {
	Type() ConditionType
	Matches(v Visit) bool
	validate() error
}

// AllCondition matches every visit.
type AllCondition struct{}

type LandingPathCondition struct {
	Operator Operator
	Value    string
}

type LandingParamCondition struct {
	Key      string
	Operator Operator
	Value    string
}

type ReferrerCondition struct {
	Operator Operator
	Value    string
}

type ReferrerDomainCondition struct {
	Operator Operator
	Value    string
}

// UTMCondition tests one utm_* parameter of the landing URL.
type UTMCondition struct {
	Field    string
	Operator Operator
	Value    string
}

func (AllCondition) Type() ConditionType            { return CondAll }
func (LandingPathCondition) Type() ConditionType    { return CondLandingPath }
func (LandingParamCondition) Type() ConditionType   { return CondLandingParam }
func (ReferrerCondition) Type() ConditionType       { return CondReferrer }
func (ReferrerDomainCondition) Type() ConditionType { return CondReferrerDomain }
func (UTMCondition) Type() ConditionType            { return CondUTM }

func (AllCondition) Matches(Visit) bool { return true }

func (c LandingPathCondition) Matches(v Visit) bool {
	path := v.landing().Path
	return c.Operator.apply(path, path != "", c.Value)
}

func (c LandingParamCondition) Matches(v Visit) bool {
	q := v.landing().Query()
	_, present := q[c.Key]
	return c.Operator.apply(q.Get(c.Key), present, c.Value)
}

func (c ReferrerCondition) Matches(v Visit) bool {
	return c.Operator.apply(v.Referrer, v.Referrer != "", c.Value)
}

func (c ReferrerDomainCondition) Matches(v Visit) bool {
	host := ""
	if u, err := url.Parse(v.Referrer); err == nil {
		host = strings.TrimPrefix(u.Hostname(), "www.")
	}
	return c.Operator.apply(host, host != "", c.Value)
}

func (c UTMCondition) Matches(v Visit) bool {
	q := v.landing().Query()
	key := "utm_" + c.Field
	_, present := q[key]
	return c.Operator.apply(q.Get(key), present, c.Value)
}

func (AllCondition) validate() error { return nil }

func validateOperator(op Operator, value string) error {
	if !op.valid() {
		return &SwapRulesError{Field: "operator", Reason: fmt.Sprintf("unknown operator %q", op)}
	}
	if op.needsValue() && value == "" {
		return &SwapRulesError{Field: "value", Reason: fmt.Sprintf("operator %q requires a value", op)}
	}
	return nil
}

func (c LandingPathCondition) validate() error    { return validateOperator(c.Operator, c.Value) }
func (c ReferrerCondition) validate() error       { return validateOperator(c.Operator, c.Value) }
func (c ReferrerDomainCondition) validate() error { return validateOperator(c.Operator, c.Value) }

func (c LandingParamCondition) validate() error {
	if c.Key == "" {
		return &SwapRulesError{Field: "key", Reason: "landing_param condition requires a key"}
	}
	return validateOperator(c.Operator, c.Value)
}

var utmFields = map[string]bool{"source": true, "medium": true, "campaign": true, "content": true, "term": true}

func (c UTMCondition) validate() error {
	if !utmFields[c.Field] {
		return &SwapRulesError{Field: "field", Reason: fmt.Sprintf("unknown utm field %q", c.Field)}
	}
	return validateOperator(c.Operator, c.Value)
}

// RuleGroup matches when every one of its conditions matches.
type RuleGroup struct {
	Conditions []Condition
}

func (g RuleGroup) Matches(v Visit) bool {
	for _, c := range g.Conditions {
		if !c.Matches(v) {
			return false
		}
	}
	return true
}

var (
	deviceTypes  = map[string]bool{"all": true, "desktop": true, "mobile": true, "tablet": true}
	browserTypes = map[string]bool{"all": true, "chrome": true, "firefox": true, "safari": true, "edge": true, "ie": true, "opera": true, "other": true}
)

// SwapRules decide whether, and in which display format, a tracking number replaces the
// business number for a visit. Inclusion groups are OR'ed; any matching exclusion group wins.
type SwapRules struct {
	Targets      []NumberFormat
	DeviceTypes  []string
	BrowserTypes []string
	Inclusion    []RuleGroup
	Exclusion    []RuleGroup
}

// DefaultSwapRules swaps every visit and renders numbers as (###) ###-####.
func DefaultSwapRules() SwapRules {
	return SwapRules{
		Targets:      []NumberFormat{"(###) ###-####"},
		DeviceTypes:  []string{"all"},
		BrowserTypes: []string{"all"},
		Inclusion:    []RuleGroup{{Conditions: []Condition{AllCondition{}}}},
	}
}

// Validate checks the document shape. Parsed rules are always valid.
func (r SwapRules) Validate() error {
	if len(r.Targets) == 0 {
		return &SwapRulesError{Field: "targets", Reason: "at least one target format is required"}
	}
	for _, t := range r.Targets {
		if t.Digits() != nationalNumberLength {
			return &SwapRulesError{Field: "targets", Reason: fmt.Sprintf("format %q must contain exactly %d '#' tokens", t, nationalNumberLength)}
		}
	}
	if len(r.DeviceTypes) == 0 {
		return &SwapRulesError{Field: "device_types", Reason: "at least one device type is required"}
	}
	for _, d := range r.DeviceTypes {
		if !deviceTypes[d] {
			return &SwapRulesError{Field: "device_types", Reason: fmt.Sprintf("unknown device type %q", d)}
		}
	}
	if len(r.BrowserTypes) == 0 {
		return &SwapRulesError{Field: "browser_types", Reason: "at least one browser type is required"}
	}
	for _, b := range r.BrowserTypes {
		if !browserTypes[b] {
			return &SwapRulesError{Field: "browser_types", Reason: fmt.Sprintf("unknown browser type %q", b)}
		}
	}
	if len(r.Inclusion) == 0 {
		return &SwapRulesError{Field: "inclusion_rules", Reason: "at least one inclusion rule is required"}
	}
	if err := validateGroups("inclusion_rules", r.Inclusion); err != nil {
		return err
	}
	return validateGroups("exclusion_rules", r.Exclusion)
}

func validateGroups(field string, groups []RuleGroup) error {
	for _, g := range groups {
		if len(g.Conditions) == 0 {
			return &SwapRulesError{Field: field, Reason: "rule group has no conditions"}
		}
		for _, c := range g.Conditions {
			if c == nil {
				return &SwapRulesError{Field: field, Reason: "empty condition"}
			}
			if err := c.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func listAllows(list []string, value string) bool {
	for _, v := range list {
		if v == "all" || strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// Matches reports whether a tracking number should be shown to this visit.
func (r SwapRules) Matches(v Visit) bool {
	if !listAllows(r.DeviceTypes, v.DeviceType) || !listAllows(r.BrowserTypes, v.Browser) {
		return false
	}
	for _, g := range r.Exclusion {
		if g.Matches(v) {
			return false
		}
	}
	for _, g := range r.Inclusion {
		if g.Matches(v) {
			return true
		}
	}
	return false
}

// DisplayFormat is the format tracking numbers are rendered in.
func (r SwapRules) DisplayFormat() NumberFormat {
	if len(r.Targets) == 0 {
		return DefaultSwapRules().Targets[0]
	}
	return r.Targets[0]
}

// Stored form.

type conditionDoc struct {
	Type     ConditionType `json:"type"`
	Key      string        `json:"key,omitempty"`
	Field    string        `json:"field,omitempty"`
	Operator Operator      `json:"operator,omitempty"`
	Value    string        `json:"value,omitempty"`
}

type ruleGroupDoc struct {
	Conditions []conditionDoc `json:"conditions"`
}

type swapRulesDoc struct {
	Targets      []NumberFormat `json:"targets"`
	DeviceTypes  []string       `json:"device_types"`
	BrowserTypes []string       `json:"browser_types"`
	Inclusion    []ruleGroupDoc `json:"inclusion_rules"`
	Exclusion    []ruleGroupDoc `json:"exclusion_rules"`
}

func encodeCondition(c Condition) conditionDoc {
	switch v := c.(type) {
	case LandingPathCondition:
		return conditionDoc{Type: CondLandingPath, Operator: v.Operator, Value: v.Value}
	case LandingParamCondition:
		return conditionDoc{Type: CondLandingParam, Key: v.Key, Operator: v.Operator, Value: v.Value}
	case ReferrerCondition:
		return conditionDoc{Type: CondReferrer, Operator: v.Operator, Value: v.Value}
	case ReferrerDomainCondition:
		return conditionDoc{Type: CondReferrerDomain, Operator: v.Operator, Value: v.Value}
	case UTMCondition:
		return conditionDoc{Type: CondUTM, Field: v.Field, Operator: v.Operator, Value: v.Value}
	default:
		return conditionDoc{Type: CondAll}
	}
}

func decodeCondition(d conditionDoc) (Condition, error) {
	switch d.Type {
	case CondAll:
		return AllCondition{}, nil
	case CondLandingPath:
		return LandingPathCondition{Operator: d.Operator, Value: d.Value}, nil
	case CondLandingParam:
		return LandingParamCondition{Key: d.Key, Operator: d.Operator, Value: d.Value}, nil
	case CondReferrer:
		return ReferrerCondition{Operator: d.Operator, Value: d.Value}, nil
	case CondReferrerDomain:
		return ReferrerDomainCondition{Operator: d.Operator, Value: d.Value}, nil
	case CondUTM:
		return UTMCondition{Field: d.Field, Operator: d.Operator, Value: d.Value}, nil
	default:
		return nil, &SwapRulesError{Field: "type", Reason: fmt.Sprintf("unknown condition type %q", d.Type)}
	}
}

func encodeGroups(groups []RuleGroup) []ruleGroupDoc {
	docs := make([]ruleGroupDoc, 0, len(groups))
	for _, g := range groups {
		doc := ruleGroupDoc{Conditions: make([]conditionDoc, 0, len(g.Conditions))}
		for _, c := range g.Conditions {
			doc.Conditions = append(doc.Conditions, encodeCondition(c))
		}
		docs = append(docs, doc)
	}
	return docs
}

func decodeGroups(docs []ruleGroupDoc) ([]RuleGroup, error) {
	groups := make([]RuleGroup, 0, len(docs))
	for _, d := range docs {
		g := RuleGroup{Conditions: make([]Condition, 0, len(d.Conditions))}
		for _, cd := range d.Conditions {
			c, err := decodeCondition(cd)
			if err != nil {
				return nil, err
			}
			g.Conditions = append(g.Conditions, c)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (r SwapRules) MarshalJSON() ([]byte, error) {
	return json.Marshal(swapRulesDoc{
		Targets:      r.Targets,
		DeviceTypes:  r.DeviceTypes,
		BrowserTypes: r.BrowserTypes,
		Inclusion:    encodeGroups(r.Inclusion),
		Exclusion:    encodeGroups(r.Exclusion),
	})
}

// UnmarshalJSON decodes and validates, so a SwapRules value obtained from JSON is always usable.
func (r *SwapRules) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSwapRules(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// ParseSwapRules decodes the stored/wire form into the variant representation and validates it.
func ParseSwapRules(raw []byte) (*SwapRules, error) {
	var doc swapRulesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSwapRules, err)
	}
	inclusion, err := decodeGroups(doc.Inclusion)
	if err != nil {
		return nil, err
	}
	exclusion, err := decodeGroups(doc.Exclusion)
	if err != nil {
		return nil, err
	}
	rules := &SwapRules{
		Targets:      doc.Targets,
		DeviceTypes:  doc.DeviceTypes,
		BrowserTypes: doc.BrowserTypes,
		Inclusion:    inclusion,
		Exclusion:    exclusion,
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}
