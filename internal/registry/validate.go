package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Validate checks that every registered descriptor is complete. All problems
// are collected and reported together.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, d := range r.Descriptors() {
		if d.Source == cty.NilType {
			errs = append(errs, fmt.Sprintf("converter '%s': source type is not set", d.Name))
		}
		if d.Target == cty.NilType {
			errs = append(errs, fmt.Sprintf("converter '%s': target type is not set", d.Name))
		}
		if d.CreateAdapterNode == nil {
			errs = append(errs, fmt.Sprintf("converter '%s': adapter factory is not set", d.Name))
		}
		if d.InPort == "" || d.OutPort == "" {
			errs = append(errs, fmt.Sprintf("converter '%s': adapter in/out ports must be named", d.Name))
		}
		if d.Source != cty.NilType && d.Target != cty.NilType && d.Source.Equals(d.Target) {
			errs = append(errs, fmt.Sprintf("converter '%s': source and target are both '%s'", d.Name, d.Source.FriendlyName()))
		}
		if d.Source != cty.NilType && d.Source.Equals(cty.DynamicPseudoType) {
			logger.Warn("Converter accepts 'any' as its source, it will match every output type. Consider narrowing it.", "converter", d.Name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
