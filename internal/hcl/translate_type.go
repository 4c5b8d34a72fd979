// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(number)`, `celsius`) into their corresponding cty.Type objects.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/nodesync/internal/ctxlog"
	"github.com/vk/nodesync/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. Bare identifiers are looked up in the catalog, which knows the
// primitives as well as every declared named type.
func typeExprToCtyType(ctx context.Context, catalog *typesys.Catalog, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Type expression is nil, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a function call.", "call", v.Name)
		if v.Name == "object" {
			return objectTypeExpr(ctx, catalog, v)
		}

		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}
		elementType, err := typeExprToCtyType(ctx, catalog, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType.Equals(cty.DynamicPseudoType) {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		name := v.Traversal.RootName()
		t, ok := catalog.Lookup(name)
		if !ok {
			return cty.DynamicPseudoType, fmt.Errorf("unknown type %q", name)
		}
		logger.Debug("Resolved type keyword.", "keyword", name)
		return t, nil

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func objectTypeExpr(ctx context.Context, catalog *typesys.Catalog, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("the object() type constructor requires exactly one argument (the object definition), got %d", len(call.Args))
	}
	objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
	}

	attrTypes := make(map[string]cty.Type, len(objExpr.Items))
	for _, item := range objExpr.Items {
		key := objectKey(item.KeyExpr)
		if key == "" {
			return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings, not complex expressions")
		}
		valueType, err := typeExprToCtyType(ctx, catalog, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		attrTypes[key] = valueType
	}
	return cty.Object(attrTypes), nil
}

func objectKey(expr hclsyntax.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch kexpr := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(kexpr.Traversal) == 1 {
			return kexpr.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(kexpr.Parts) == 1 {
			if lit, isLit := kexpr.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}

// typeListExpr parses a tuple of type expressions such as `[string, number]`.
func typeListExpr(ctx context.Context, catalog *typesys.Catalog, expr hcl.Expression) ([]cty.Type, error) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	types := make([]cty.Type, 0, len(items))
	for _, item := range items {
		t, err := typeExprToCtyType(ctx, catalog, item)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
