package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/lever-planner/internal/scope"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

// Office targeting modes accepted in plan files.
const (
	OfficeModeAll      = "all"
	OfficeModeJourney  = "journey"
	OfficeModeExplicit = "explicit"
)

const allKeyword = "all"

// RequestConfig is a targeting request as written in a plan file.
type RequestConfig struct {
	Name             string             `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	LeverTypes       []string           `json:"leverTypes" yaml:"leverTypes" mapstructure:"leverTypes"`
	Levels           []string           `json:"levels" yaml:"levels" mapstructure:"levels"`
	CumulativeValue  float64            `json:"cumulativeValue" yaml:"cumulativeValue" mapstructure:"cumulativeValue"`
	Period           string             `json:"period" yaml:"period" mapstructure:"period"`
	ReferenceMonth   int                `json:"referenceMonth,omitempty" yaml:"referenceMonth,omitempty" mapstructure:"referenceMonth"`
	ApplyToAllMonths bool               `json:"applyToAllMonths,omitempty" yaml:"applyToAllMonths,omitempty" mapstructure:"applyToAllMonths"`
	Offices          OfficeTargetConfig `json:"offices" yaml:"offices" mapstructure:"offices"`
}

// OfficeTargetConfig selects offices: mode "all", "journey" with Journey, or
// "explicit" with Names.
type OfficeTargetConfig struct {
	Mode    string   `json:"mode" yaml:"mode" mapstructure:"mode"`
	Journey string   `json:"journey,omitempty" yaml:"journey,omitempty" mapstructure:"journey"`
	Names   []string `json:"names,omitempty" yaml:"names,omitempty" mapstructure:"names"`
}

// DisplayName returns the request name, or its position when unnamed.
func (rc RequestConfig) DisplayName(index int) string {
	if rc.Name != "" {
		return rc.Name
	}
	return fmt.Sprintf("request %d", index+1)
}

// ToRequest converts a plan entry into a scope.Request. Unknown lever types,
// levels, periods or journeys are errors; "all" expands to every lever type
// or level.
func (rc RequestConfig) ToRequest() (scope.Request, error) {
	req := scope.Request{
		CumulativeValue:  rc.CumulativeValue,
		ReferenceMonth:   levers.Month(rc.ReferenceMonth),
		ApplyToAllMonths: rc.ApplyToAllMonths,
	}

	for _, name := range rc.LeverTypes {
		if strings.EqualFold(strings.TrimSpace(name), allKeyword) {
			req.LeverTypes = levers.AllLeverTypes()
			break
		}
		t, err := levers.ParseLeverType(name)
		if err != nil {
			return scope.Request{}, err
		}
		req.LeverTypes = append(req.LeverTypes, t)
	}

	for _, name := range rc.Levels {
		if strings.EqualFold(strings.TrimSpace(name), allKeyword) {
			req.Levels = levers.AllLevels()
			break
		}
		l, err := levers.ParseLevel(name)
		if err != nil {
			return scope.Request{}, err
		}
		req.Levels = append(req.Levels, l)
	}

	period := rc.Period
	if period == "" {
		period = string(levers.Monthly)
	}
	p, err := levers.ParseTimePeriod(period)
	if err != nil {
		return scope.Request{}, err
	}
	req.Period = p

	mode, err := rc.Offices.ToOfficeMode()
	if err != nil {
		return scope.Request{}, err
	}
	req.OfficeMode = mode
	return req, nil
}

// ToOfficeMode builds the tagged office mode. An empty mode targets all
// offices.
func (oc OfficeTargetConfig) ToOfficeMode() (scope.OfficeMode, error) {
	switch strings.ToLower(strings.TrimSpace(oc.Mode)) {
	case "", OfficeModeAll:
		return scope.AllOffices{}, nil
	case OfficeModeJourney:
		j, err := levers.ParseOfficeJourney(oc.Journey)
		if err != nil {
			return nil, err
		}
		return scope.ByJourney{Journey: j}, nil
	case OfficeModeExplicit:
		return scope.Explicit{Names: append([]string(nil), oc.Names...)}, nil
	}
	return nil, fmt.Errorf("unknown office mode %q", oc.Mode)
}

// TargetingRequests converts every request in the plan, failing on the first
// invalid one.
func (conf *Configuration) TargetingRequests() ([]scope.Request, error) {
	out := make([]scope.Request, 0, len(conf.Requests))
	for i, rc := range conf.Requests {
		req, err := rc.ToRequest()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rc.DisplayName(i), err)
		}
		out = append(out, req)
	}
	return out, nil
}
