package service

import (
	"fmt"
	"os"

	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
	appvalidation "github.com/karthikpoola6-cmd/email-triage-ai/internal/validation"
)

// FilterRules extends the built-in inbound filter sets from configuration.
type FilterRules struct {
	SkipSenders []string `yaml:"skip_senders"`
	SkipDomains []string `yaml:"skip_domains"`
}

// RoutingRules is the parsed routing rules file: the category table the
// routing policy decides from, plus optional filter extensions.
type RoutingRules struct {
	Categories map[string]domain.RoutingRule `yaml:"categories"`
	Filters    FilterRules                   `yaml:"filters"`
}

// LoadRoutingRules reads and validates the routing rules YAML file.
func LoadRoutingRules(path string) (*RoutingRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read routing rules file")
	}

	var rules RoutingRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse routing rules file")
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}

	return &rules, nil
}

// Validate checks that the table can route every message: the general
// fallback must exist and every entry must be complete.
func (r *RoutingRules) Validate() error {
	if _, ok := r.Categories[domain.CategoryGeneral.String()]; !ok {
		return domain.ErrMissingGeneralRule
	}

	for name, rule := range r.Categories {
		err := validation.ValidateStruct(&rule,
			validation.Field(&rule.AssignmentGroup, validation.Required, appvalidation.NotBlank),
			validation.Field(&rule.Priority, validation.Required, validation.Min(1)),
			validation.Field(&rule.SLAHours, validation.Required, validation.Min(1)),
		)
		if err != nil {
			return appvalidation.WrapValidationError(fmt.Errorf("category %q: %w", name, err))
		}
	}

	return nil
}

// Table converts the parsed category map into the typed routing table the
// policy consumes.
func (r *RoutingRules) Table() map[domain.Category]domain.RoutingRule {
	table := make(map[domain.Category]domain.RoutingRule, len(r.Categories))
	for name, rule := range r.Categories {
		table[domain.Category(name)] = rule
	}
	return table
}
